package ecg

// Pipeline wires the conditioner, detector and estimator into the
// per-sample processing chain and fans accepted beats and estimate
// updates out to registered observers. All state lives in the pipeline;
// Process must be called from a single goroutine.
type Pipeline struct {
	conditioner *Conditioner
	detector    *Detector
	estimator   *Estimator

	beatObservers     []BeatObserver
	estimateObservers []EstimateObserver
}

func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		conditioner: NewConditioner(cfg.BaselineAlpha, cfg.EnvelopeAlpha),
		detector:    NewDetector(cfg.ThresholdAlpha, cfg.ThresholdGain, cfg.Refractory),
		estimator:   NewEstimator(cfg.RRWindow, cfg.BPMMin, cfg.BPMMax),
	}, nil
}

// OnBeat registers an observer for accepted beats.
func (p *Pipeline) OnBeat(fn BeatObserver) {
	p.beatObservers = append(p.beatObservers, fn)
}

// OnEstimate registers an observer for estimate updates.
func (p *Pipeline) OnEstimate(fn EstimateObserver) {
	p.estimateObservers = append(p.estimateObservers, fn)
}

// Process runs one sample through the chain. It must complete within
// the sampling period; nothing here blocks or allocates per call.
func (p *Pipeline) Process(s Sample) {
	_, envelope := p.conditioner.Process(s.Value)

	beat, ok := p.detector.Process(envelope, s.At)
	if !ok {
		return
	}

	before := p.estimator.Current()
	p.estimator.OnBeat(beat)

	for _, fn := range p.beatObservers {
		fn(beat)
	}

	after := p.estimator.Current()
	if after != before {
		for _, fn := range p.estimateObservers {
			fn(after)
		}
	}
}

// Current returns the latest published heart-rate estimate.
func (p *Pipeline) Current() Estimate {
	return p.estimator.Current()
}

// Rejected reports how many out-of-range BPM results were discarded.
func (p *Pipeline) Rejected() uint64 {
	return p.estimator.Rejected()
}
