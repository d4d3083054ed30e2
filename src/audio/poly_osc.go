package audio

// ----- Oscillator Pool ----- //

type oscHandle struct {
	index int32
	gen   uint32
}

type oscillatorPool struct {
	oscs []*Oscillator
}

func newOscillatorPool(tables *Tables, size int) *oscillatorPool {
	oscs := make([]*Oscillator, size)
	for i := range oscs {
		oscs[i] = NewOscillator(tables)
	}
	return &oscillatorPool{
		oscs: oscs,
	}
}

// allocate hands out the first slot that is not playing. Bumping the
// generation invalidates handles still held by the previous owner.
func (p *oscillatorPool) allocate() (oscHandle, bool) {
	for i, o := range p.oscs {
		if !o.IsPlaying() {
			o.gen++
			return oscHandle{index: int32(i), gen: o.gen}, true
		}
	}
	return oscHandle{}, false
}

func (p *oscillatorPool) get(h oscHandle) *Oscillator {
	if h.index < 0 || int(h.index) >= len(p.oscs) {
		return nil
	}
	o := p.oscs[h.index]
	if o.gen != h.gen {
		return nil
	}
	return o
}

func (p *oscillatorPool) activeCount() int {
	n := 0
	for _, o := range p.oscs {
		if o.IsPlaying() {
			n++
		}
	}
	return n
}

func (p *oscillatorPool) setBpm(bpm float64) {
	for _, o := range p.oscs {
		o.envelope.SetBpm(bpm)
	}
}
