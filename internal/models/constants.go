package models

// JobStatus values. A job only moves forward (PENDING -> ACCEPTED -> DONE),
// except the HIDDEN branch which soft-deletes it.
const (
	JobStatusPending  = "PENDING"
	JobStatusAccepted = "ACCEPTED"
	JobStatusDone     = "DONE"
	JobStatusHidden   = "HIDDEN"
)

// OfferStatus values.
const (
	OfferStatusPending   = "PENDING"
	OfferStatusAccepted  = "ACCEPTED"
	OfferStatusRejected  = "REJECTED"
	OfferStatusWithdrawn = "WITHDRAWN"
	OfferStatusDone      = "DONE"
	OfferStatusHidden    = "HIDDEN"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

// LicenseStatus values.
const (
	LicenseStatusPending  = "PENDING"
	LicenseStatusApproved = "APPROVED"
	LicenseStatusRejected = "REJECTED"
)

// Job categories.
const (
	CategoryCarpentry  = "CARPENTRY"
	CategoryElectrical = "ELECTRICAL"
	CategoryPlumbing   = "PLUMBING"
	CategoryPainting   = "PAINTING"
	CategoryFlooring   = "FLOORING"
	CategoryRoofing    = "ROOFING"
	CategoryGardening  = "GARDENING"
	CategoryMoving     = "MOVING"
	CategoryRenovation = "RENOVATION"
	CategoryCleaning   = "CLEANING"
	CategoryOther      = "OTHER"
)

// ValidCategories is the closed set of job categories.
var ValidCategories = map[string]struct{}{
	CategoryCarpentry:  {},
	CategoryElectrical: {},
	CategoryPlumbing:   {},
	CategoryPainting:   {},
	CategoryFlooring:   {},
	CategoryRoofing:    {},
	CategoryGardening:  {},
	CategoryMoving:     {},
	CategoryRenovation: {},
	CategoryCleaning:   {},
	CategoryOther:      {},
}

// ValidJobStatuses is the closed set of job statuses.
var ValidJobStatuses = map[string]struct{}{
	JobStatusPending:  {},
	JobStatusAccepted: {},
	JobStatusDone:     {},
	JobStatusHidden:   {},
}

// SentinelUsername is the placeholder account that absorbs references
// from deleted users.
const SentinelUsername = "deleted user"
