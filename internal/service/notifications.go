package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// Notification payload builders. Every state change that notifies someone
// goes through one of these so titles, URLs and tags stay consistent.

func newOfferNote(customerID uuid.UUID, jobTitle string, price float64, offerID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: customerID,
		Title:  "New job offer",
		Body:   fmt.Sprintf("Your job request %s has a new offer of %.2f €", jobTitle, price),
		URL:    "/customer",
		Tag:    "offer-" + offerID.String(),
	}
}

func offerAcceptedNote(workerID uuid.UUID, jobTitle string, jobID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: workerID,
		Title:  "Job offer accepted",
		Body:   fmt.Sprintf("Your offer for %s was accepted", jobTitle),
		URL:    "/worker/offers",
		Tag:    "request-" + jobID.String(),
	}
}

func alertMatchNote(workerID uuid.UUID, jobTitle string, alertID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: workerID,
		Title:  "New job request",
		Body:   fmt.Sprintf("A new job '%s' matches your saved search.", jobTitle),
		URL:    "/worker/saved-searches",
		Tag:    "saved-" + alertID.String(),
	}
}

func jobDoneNote(workerID uuid.UUID, jobTitle string, jobID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: workerID,
		Title:  "Job request done",
		Body:   fmt.Sprintf("%s is finished, you can now rate the customer", jobTitle),
		URL:    "/worker/offers",
		Tag:    "done-" + jobID.String(),
	}
}

func licenseApprovedNote(workerID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: workerID,
		Title:  "License approved",
		Body:   "Your license was approved, you can now search for jobs!",
		URL:    "/worker/requests",
		Tag:    "license-approved",
	}
}

func licenseRejectedNote(workerID uuid.UUID) *models.OutboxNotification {
	return &models.OutboxNotification{
		UserID: workerID,
		Title:  "License rejected",
		Body:   "Your license was rejected, please upload a new one.",
		URL:    "/worker/edit",
		Tag:    "license-rejected",
	}
}
