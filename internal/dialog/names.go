// Package dialog decides what the skill says and renders it from localized
// templates.
package dialog

// Name identifies a dialog template
type Name string

const (
	NoAppointments               Name = "NoAppointments"
	NoAppointmentsToday          Name = "NoAppointmentsToday"
	NoAppointmentsTomorrow       Name = "NoAppointmentsTomorrow"
	NoNextAppointments           Name = "NoNextAppointments"
	NextAppointment              Name = "NextAppointment"
	NextAppointmentTomorrow      Name = "NextAppointmentTomorrow"
	NextAppointmentDate          Name = "NextAppointmentDate"
	NextAppointmentWholeToday    Name = "NextAppointmentWholeToday"
	NextAppointmentWholeTomorrow Name = "NextAppointmentWholeTomorrow"
	NextAppointmentWholeDay      Name = "NextAppointmentWholeDay"
	WholedayAppointment          Name = "WholedayAppointment"
	AddSucceeded                 Name = "AddSucceeded"
	AddFailed                    Name = "AddFailed"
	SavingReminder               Name = "SavingReminder"
	Help                         Name = "Help"
)

// Slot names used in dialog data
const (
	SlotAppointment = "appointment"
	SlotTime        = "time"
	SlotDate        = "date"
	SlotTimeDate    = "timedate"
)

// Response is a dialog plus the values for its slots
type Response struct {
	Dialog Name
	Data   map[string]string
}
