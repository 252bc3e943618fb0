package courier

// Stage is a single stage of a client's exchange pipeline.
//
// A stage decorates the exchanger that follows it. It may intercept the
// readiness protocol, the exchange itself, or both.
type Stage func(next Exchanger) Exchanger

// newPipeline composes stages around a backend exchanger.
//
// The first stage is the outermost: it sees each request first and its
// response last.
func newPipeline(backend Exchanger, stages []Stage) Exchanger {
	ex := backend

	for i := len(stages) - 1; i >= 0; i-- {
		ex = stages[i](ex)
	}

	return ex
}
