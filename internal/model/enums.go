package model

// RecordStatus is the lifecycle state of a maintenance record.
// PENDING is initial and DONE is terminal.
type RecordStatus string

const (
	RecordStatusPending RecordStatus = "PENDING"
	RecordStatusDone    RecordStatus = "DONE"
)

func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusPending, RecordStatusDone:
		return true
	default:
		return false
	}
}

// Priority of a maintenance record.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Category is the maintenance domain a record belongs to.
type Category string

const (
	CategoryElectrical    Category = "ELECTRICAL"
	CategoryMechanical    Category = "MECHANICAL"
	CategoryPneumatic     Category = "PNEUMATIC"
	CategoryProcess       Category = "PROCESS"
	CategoryElectronic    Category = "ELECTRONIC"
	CategoryAutomation    Category = "AUTOMATION"
	CategoryBuilding      Category = "BUILDING"
	CategoryTooling       Category = "TOOLING"
	CategoryRefrigeration Category = "REFRIGERATION"
	CategorySetup         Category = "SETUP"
	CategoryHydraulic     Category = "HYDRAULIC"
)

// AllCategories returns every known category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryElectrical,
		CategoryMechanical,
		CategoryPneumatic,
		CategoryProcess,
		CategoryElectronic,
		CategoryAutomation,
		CategoryBuilding,
		CategoryTooling,
		CategoryRefrigeration,
		CategorySetup,
		CategoryHydraulic,
	}
}

func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Shift is the work shift during which the problem was raised.
type Shift string

const (
	ShiftFirst  Shift = "FIRST"
	ShiftSecond Shift = "SECOND"
	ShiftThird  Shift = "THIRD"
)

func (s Shift) IsValid() bool {
	switch s {
	case ShiftFirst, ShiftSecond, ShiftThird:
		return true
	default:
		return false
	}
}

// PhotoType marks an attachment as taken before or after the intervention.
type PhotoType string

const (
	PhotoTypeBefore PhotoType = "BEFORE"
	PhotoTypeAfter  PhotoType = "AFTER"
)

func (t PhotoType) IsValid() bool {
	return t == PhotoTypeBefore || t == PhotoTypeAfter
}

// Folder returns the storage folder used for photos of this type.
func (t PhotoType) Folder() string {
	if t == PhotoTypeBefore {
		return "before"
	}
	return "after"
}

// EventType classifies a maintenance event.
type EventType string

const (
	EventTypeReplacement EventType = "REPLACEMENT"
	EventTypeInspection  EventType = "INSPECTION"
	EventTypeAdjustment  EventType = "ADJUSTMENT"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeReplacement, EventTypeInspection, EventTypeAdjustment:
		return true
	default:
		return false
	}
}

// EventDestination is where a removed component was sent.
type EventDestination string

const (
	DestinationRepair   EventDestination = "REPAIR"
	DestinationScrap    EventDestination = "SCRAP"
	DestinationAnalysis EventDestination = "ANALYSIS"
	DestinationStorage  EventDestination = "STORAGE"
	DestinationReturn   EventDestination = "RETURN"
)

func (d EventDestination) IsValid() bool {
	switch d {
	case DestinationRepair, DestinationScrap, DestinationAnalysis, DestinationStorage, DestinationReturn:
		return true
	default:
		return false
	}
}
