package api

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID              `json:"doctorId"`
	SpecialtyID *uuid.UUID             `json:"specialtyId,omitempty"`
	ServiceID   *uuid.UUID             `json:"serviceId,omitempty"`
	PatientID   *uuid.UUID             `json:"patientId,omitempty"`
	Date        timeslot.Date          `json:"date"`
	StartTime   timeslot.TimeOfDay     `json:"startTime"`
	EndTime     timeslot.TimeOfDay     `json:"endTime"`
	Reason      string                 `json:"reason"`
	GuestInfo   *appointment.GuestInfo `json:"guestInfo,omitempty"`
}

func (req CreateAppointmentRequest) booking(caller appointment.Actor) appointment.BookingRequest {
	return appointment.BookingRequest{
		DoctorID:    req.DoctorID,
		SpecialtyID: req.SpecialtyID,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Start:       req.StartTime,
		End:         req.EndTime,
		Reason:      req.Reason,
		Caller:      caller,
		PatientID:   req.PatientID,
		Guest:       req.GuestInfo,
	}
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type UpdateStatusRequest struct {
	ToStatus *appointment.Status `json:"toStatus"`
	Reason   string              `json:"reason,omitempty"`
}

type AppointmentResponse struct {
	Appointment  *appointment.Appointment `json:"appointment"`
	NextStatuses []appointment.Status     `json:"nextStatuses"`
	History      []appointment.Event      `json:"history,omitempty"`
}

type AppointmentListResponse struct {
	Data []appointment.Appointment `json:"data"`
}

type SlotsResponse struct {
	AvailableSlots []timeslot.Interval `json:"availableSlots"`
}

type DoctorsResponse struct {
	Data []roster.Doctor `json:"data"`
}

type SpecialtySlotsResponse struct {
	Slots []availability.SpecialtySlot `json:"slots"`
}

type GenerateShiftsRequest struct {
	DoctorID    *uuid.UUID `json:"doctorId,omitempty"`
	HorizonDays int        `json:"horizonDays,omitempty"`
}

type GenerateShiftsResponse struct {
	DoctorID *uuid.UUID `json:"doctorId,omitempty"`
	Created  int        `json:"created"`
}

type SetShiftActiveRequest struct {
	Date      timeslot.Date      `json:"date"`
	StartTime timeslot.TimeOfDay `json:"startTime"`
	Active    bool               `json:"active"`
}

type RecordInvoiceRequest struct {
	ServiceAmount decimal.Decimal `json:"serviceAmount"`
	ExtraAmount   decimal.Decimal `json:"extraAmount"`
}

type MarkPaidRequest struct {
	PaidOn timeslot.Date `json:"paidOn"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
