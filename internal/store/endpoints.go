package store

import "net/http"

// Capability is a set of operations a resource supports.
type Capability uint8

const (
	CanList Capability = 1 << iota
	CanDetail
	CanCreate
	CanUpdate
	CanRemove

	AllCapabilities = CanList | CanDetail | CanCreate | CanUpdate | CanRemove
)

func (c Capability) Has(op Capability) bool {
	return c&op == op
}

// Operation names a store operation in logs, metrics and messages.
type Operation string

const (
	OpList   Operation = "list"
	OpDetail Operation = "detail"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
)

func (op Operation) capability() Capability {
	switch op {
	case OpList:
		return CanList
	case OpDetail:
		return CanDetail
	case OpCreate:
		return CanCreate
	case OpUpdate:
		return CanUpdate
	case OpRemove:
		return CanRemove
	}
	return 0
}

// Message is what a failed operation reports. Failed is used when the
// backend answers non-2xx without an error field; Activity completes
// "An unexpected error occurred while ..." for transport failures.
type Message struct {
	Failed   string
	Activity string
}

// Endpoints describes one REST resource.
type Endpoints struct {
	Resource     string
	Collection   string
	ListPath     string
	Capabilities Capability
	UpdateMethod string
	Cacheable    bool
	Messages     map[Operation]Message
}

func (e Endpoints) listPath() string {
	if e.ListPath != "" {
		return e.ListPath
	}
	return e.Collection
}

func (e Endpoints) itemPath(id string) string {
	return e.Collection + "/" + id
}

func (e Endpoints) updateMethod() string {
	if e.UpdateMethod != "" {
		return e.UpdateMethod
	}
	return http.MethodPut
}

func (e Endpoints) message(op Operation) Message {
	if m, ok := e.Messages[op]; ok {
		return m
	}
	return Message{
		Failed:   "Request to " + e.Resource + " failed.",
		Activity: string(op) + " " + e.Resource,
	}
}

var Bookings = Endpoints{
	Resource:     "bookings",
	Collection:   "/bookings",
	Capabilities: AllCapabilities,
	Messages: map[Operation]Message{
		OpList:   {Failed: "Failed to fetch bookings.", Activity: "fetching bookings"},
		OpDetail: {Failed: "Booking detail not found.", Activity: "fetching booking detail"},
		OpCreate: {Failed: "Failed to create booking.", Activity: "creating booking"},
		OpUpdate: {Failed: "Failed to update booking status.", Activity: "updating booking status"},
		OpRemove: {Failed: "Failed to delete booking.", Activity: "deleting booking"},
	},
}

var Schedules = Endpoints{
	Resource:     "schedules",
	Collection:   "/schedules",
	Capabilities: AllCapabilities,
	Messages: map[Operation]Message{
		OpList:   {Failed: "Failed to fetch schedules.", Activity: "fetching schedules"},
		OpDetail: {Failed: "Schedule not found.", Activity: "fetching schedule detail"},
		OpCreate: {Failed: "Failed to add schedule.", Activity: "adding schedule"},
		OpUpdate: {Failed: "Failed to update schedule.", Activity: "updating schedule"},
		OpRemove: {Failed: "Failed to delete schedule.", Activity: "deleting schedule"},
	},
}

var Reviews = Endpoints{
	Resource:     "reviews",
	Collection:   "/reviews",
	Capabilities: CanList | CanCreate,
	Messages: map[Operation]Message{
		OpList:   {Failed: "Failed to fetch reviews.", Activity: "fetching reviews"},
		OpCreate: {Failed: "Failed to create review.", Activity: "creating review"},
	},
}

var Psychologists = Endpoints{
	Resource:     "psychologists",
	Collection:   "/psychologists",
	ListPath:     "/psychologists/available",
	Capabilities: CanList | CanDetail,
	Cacheable:    true,
	Messages: map[Operation]Message{
		OpList:   {Failed: "Failed to fetch psychologists with schedules.", Activity: "fetching psychologists"},
		OpDetail: {Failed: "Psychologist not found.", Activity: "fetching psychologist detail"},
	},
}

// All lists the endpoints of every RuangPulih resource.
var All = []Endpoints{Bookings, Schedules, Reviews, Psychologists}
