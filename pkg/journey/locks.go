package journey

import "sync"

// vehicleLockRegistry serialises trip mutations per vehicle. Operations on
// different vehicles never contend.
type vehicleLockRegistry struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

func newVehicleLockRegistry() *vehicleLockRegistry {
	return &vehicleLockRegistry{
		locks: map[string]*sync.Mutex{},
	}
}

func (r *vehicleLockRegistry) Get(vehicleRef string) *sync.Mutex {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	lock, ok := r.locks[vehicleRef]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[vehicleRef] = lock
	}

	return lock
}
