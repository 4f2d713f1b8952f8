package hardware

import "sync"

// Fake is an in-memory CarInfo. Emit* calls fire the registered listeners
// synchronously on the caller's goroutine. One-shot fetches registered before
// the answer is known are held until SetModel / SetEnergyProfile.
type Fake struct {
	mu sync.Mutex

	energy  []func(EnergyLevel)
	ev      []func(EvStatus)
	speed   []func(Speed)
	mileage []func(Mileage)

	model          *Model
	modelWaiters   []func(Model)
	profile        *EnergyProfile
	profileWaiters []func(EnergyProfile)
}

// NewFake returns a Fake with no listeners.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) AddEnergyLevelListener(fn func(EnergyLevel)) {
	f.mu.Lock()
	f.energy = append(f.energy, fn)
	f.mu.Unlock()
}

func (f *Fake) AddEvStatusListener(fn func(EvStatus)) {
	f.mu.Lock()
	f.ev = append(f.ev, fn)
	f.mu.Unlock()
}

func (f *Fake) AddSpeedListener(fn func(Speed)) {
	f.mu.Lock()
	f.speed = append(f.speed, fn)
	f.mu.Unlock()
}

func (f *Fake) AddMileageListener(fn func(Mileage)) {
	f.mu.Lock()
	f.mileage = append(f.mileage, fn)
	f.mu.Unlock()
}

func (f *Fake) FetchModel(fn func(Model)) {
	f.mu.Lock()
	if f.model == nil {
		f.modelWaiters = append(f.modelWaiters, fn)
		f.mu.Unlock()
		return
	}
	m := *f.model
	f.mu.Unlock()
	fn(m)
}

func (f *Fake) FetchEnergyProfile(fn func(EnergyProfile)) {
	f.mu.Lock()
	if f.profile == nil {
		f.profileWaiters = append(f.profileWaiters, fn)
		f.mu.Unlock()
		return
	}
	p := *f.profile
	f.mu.Unlock()
	fn(p)
}

// SetModel answers pending and future FetchModel calls.
func (f *Fake) SetModel(m Model) {
	f.mu.Lock()
	f.model = &m
	waiters := f.modelWaiters
	f.modelWaiters = nil
	f.mu.Unlock()
	for _, fn := range waiters {
		fn(m)
	}
}

// SetEnergyProfile answers pending and future FetchEnergyProfile calls.
func (f *Fake) SetEnergyProfile(p EnergyProfile) {
	f.mu.Lock()
	f.profile = &p
	waiters := f.profileWaiters
	f.profileWaiters = nil
	f.mu.Unlock()
	for _, fn := range waiters {
		fn(p)
	}
}

func (f *Fake) EmitEnergyLevel(e EnergyLevel) {
	f.mu.Lock()
	ls := append([]func(EnergyLevel){}, f.energy...)
	f.mu.Unlock()
	for _, fn := range ls {
		fn(e)
	}
}

func (f *Fake) EmitEvStatus(s EvStatus) {
	f.mu.Lock()
	ls := append([]func(EvStatus){}, f.ev...)
	f.mu.Unlock()
	for _, fn := range ls {
		fn(s)
	}
}

func (f *Fake) EmitSpeed(s Speed) {
	f.mu.Lock()
	ls := append([]func(Speed){}, f.speed...)
	f.mu.Unlock()
	for _, fn := range ls {
		fn(s)
	}
}

func (f *Fake) EmitMileage(m Mileage) {
	f.mu.Lock()
	ls := append([]func(Mileage){}, f.mileage...)
	f.mu.Unlock()
	for _, fn := range ls {
		fn(m)
	}
}
