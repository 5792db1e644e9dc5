package domain

// PartCategory classifies a part for matching category-wide service plans.
type PartCategory string

const (
	PartCategoryChain      PartCategory = "CHAIN"
	PartCategoryCassette   PartCategory = "CASSETTE"
	PartCategoryChainring  PartCategory = "CHAINRING"
	PartCategoryTire       PartCategory = "TIRE"
	PartCategoryWheel      PartCategory = "WHEEL"
	PartCategoryBrakePad   PartCategory = "BRAKE_PAD"
	PartCategoryBrakeRotor PartCategory = "BRAKE_ROTOR"
	PartCategoryFork       PartCategory = "FORK"
	PartCategoryShock      PartCategory = "SHOCK"
	PartCategoryBattery    PartCategory = "BATTERY"
	PartCategoryOther      PartCategory = "OTHER"
)

func (c PartCategory) String() string { return string(c) }

func (c PartCategory) IsValid() bool {
	switch c {
	case PartCategoryChain, PartCategoryCassette, PartCategoryChainring,
		PartCategoryTire, PartCategoryWheel, PartCategoryBrakePad,
		PartCategoryBrakeRotor, PartCategoryFork, PartCategoryShock,
		PartCategoryBattery, PartCategoryOther:
		return true
	}
	return false
}

// GearKind identifies the kind of host assembly.
type GearKind string

const (
	GearKindBike    GearKind = "BIKE"
	GearKindEBike   GearKind = "EBIKE"
	GearKindTrainer GearKind = "TRAINER"
	GearKindOther   GearKind = "OTHER"
)

func (k GearKind) String() string { return string(k) }

func (k GearKind) IsValid() bool {
	switch k {
	case GearKindBike, GearKindEBike, GearKindTrainer, GearKindOther:
		return true
	}
	return false
}

// MetricKind names one of the cumulative wear metrics a service plan
// can set a threshold on.
type MetricKind string

const (
	MetricDistance   MetricKind = "DISTANCE"
	MetricMovingTime MetricKind = "MOVING_TIME"
	MetricElevation  MetricKind = "ELEVATION"
	MetricActivities MetricKind = "ACTIVITIES"
)

func (m MetricKind) String() string { return string(m) }

func (m MetricKind) IsValid() bool {
	switch m {
	case MetricDistance, MetricMovingTime, MetricElevation, MetricActivities:
		return true
	}
	return false
}

// ServiceState is the evaluated status of a part against one service plan.
type ServiceState string

const (
	// ServiceStateOk means usage since the last baseline is below the threshold.
	ServiceStateOk ServiceState = "OK"
	// ServiceStateDue means the threshold has been reached or passed.
	ServiceStateDue ServiceState = "DUE"
	// ServiceStateSatisfied is terminal for one-time plans once a matching
	// service event has been recorded.
	ServiceStateSatisfied ServiceState = "SATISFIED"
)

func (s ServiceState) String() string { return string(s) }
