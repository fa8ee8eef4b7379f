package loyalty

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var day = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func (f *fixture) book(patientID uuid.UUID, doctorID *uuid.UUID, start, end time.Time) *Result {
	f.t.Helper()
	res, err := f.engine.ScheduleAppointment(f.ctx, AppointmentRequest{
		ClinicID: f.clinic.ID, PatientID: patientID, DoctorID: doctorID, Start: start, End: end, Type: "CLEANING",
	})
	require.NoError(f.t, err)
	return res
}

func TestScheduleAppointmentRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient("Asha")
	b := f.addPatient("Bilal")

	requireSuccess(t, f.book(a.ID, nil, at(10, 0), at(11, 0)))

	res := f.book(b.ID, nil, at(10, 30), at(11, 30))
	requireFailure(t, res, CodeConflict)
	assert.Len(t, f.state().Appointments, 1)

	// Touching intervals do not overlap.
	requireSuccess(t, f.book(b.ID, nil, at(11, 0), at(12, 0)))
	requireSuccess(t, f.book(b.ID, nil, at(9, 0), at(10, 0)))
	requireFailure(t, f.book(b.ID, nil, at(9, 30), at(11, 30)), CodeConflict)
}

func TestScheduleAppointmentIgnoresCancelled(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient("Asha")

	res := f.book(a.ID, nil, at(10, 0), at(11, 0))
	requireSuccess(t, res)
	id := res.UpdatedData.Appointments[0].ID
	requireSuccess(t, mustResult(f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, models.AppointmentCancelled)))

	requireSuccess(t, f.book(a.ID, nil, at(10, 0), at(11, 0)))
}

func TestScheduleAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient("Asha")
	other := f.addClinic("elsewhere")
	stranger := f.addUser(other.ID, "Ravi", models.RolePatient, "")
	patientAsDoctor := f.addPatient("Bilal")

	requireFailure(t, f.book(a.ID, nil, at(11, 0), at(10, 0)), CodeValidation)
	requireFailure(t, f.book(a.ID, nil, at(10, 0), at(10, 0)), CodeValidation)
	requireFailure(t, f.book(stranger.ID, nil, at(10, 0), at(11, 0)), CodeAuth)
	requireFailure(t, f.book(a.ID, &stranger.ID, at(10, 0), at(11, 0)), CodeAuth)
	requireFailure(t, f.book(a.ID, &patientAsDoctor.ID, at(10, 0), at(11, 0)), CodeAuth)
	staff := f.addUser(f.clinic.ID, "Dr. Rao", models.RoleAdmin, "")
	requireFailure(t, f.book(staff.ID, nil, at(10, 0), at(11, 0)), CodeAuth)

	res, err := f.engine.ScheduleAppointment(f.ctx, AppointmentRequest{
		ClinicID: uuid.New(), PatientID: a.ID, Start: at(10, 0), End: at(11, 0),
	})
	require.NoError(t, err)
	requireFailure(t, res, CodeAuth)
	assert.Empty(t, f.state().Appointments)
}

func TestScheduleAppointmentDoctorScope(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.ConflictScope = ConflictScopeDoctor })
	a := f.addPatient("Asha")
	b := f.addPatient("Bilal")
	drRao := f.addUser(f.clinic.ID, "Dr. Rao", models.RoleAdmin, "")
	drSen := f.addUser(f.clinic.ID, "Dr. Sen", models.RoleAdmin, "")

	requireSuccess(t, f.book(a.ID, &drRao.ID, at(10, 0), at(11, 0)))
	requireSuccess(t, f.book(b.ID, &drSen.ID, at(10, 0), at(11, 0)))
	requireFailure(t, f.book(b.ID, &drRao.ID, at(10, 30), at(11, 30)), CodeConflict)

	requireSuccess(t, f.book(a.ID, nil, at(10, 0), at(11, 0)))
	requireFailure(t, f.book(b.ID, nil, at(10, 15), at(10, 45)), CodeConflict)
}

func TestAppointmentStatusMachine(t *testing.T) {
	allowed := map[[2]models.AppointmentStatus]bool{
		{models.AppointmentScheduled, models.AppointmentConfirmed}: true,
		{models.AppointmentScheduled, models.AppointmentCancelled}: true,
		{models.AppointmentScheduled, models.AppointmentNoShow}:    true,
		{models.AppointmentConfirmed, models.AppointmentCompleted}: true,
		{models.AppointmentConfirmed, models.AppointmentCancelled}: true,
		{models.AppointmentConfirmed, models.AppointmentNoShow}:    true,
	}
	statuses := []models.AppointmentStatus{
		models.AppointmentScheduled, models.AppointmentConfirmed, models.AppointmentCancelled,
		models.AppointmentCompleted, models.AppointmentNoShow,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]models.AppointmentStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient("Asha")
	res := f.book(a.ID, nil, at(10, 0), at(11, 0))
	requireSuccess(t, res)
	id := res.UpdatedData.Appointments[0].ID

	requireSuccess(t, mustResult(f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, models.AppointmentConfirmed)))
	requireSuccess(t, mustResult(f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, models.AppointmentConfirmed)))
	requireSuccess(t, mustResult(f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, models.AppointmentCompleted)))

	res, err := f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, models.AppointmentScheduled)
	require.NoError(t, err)
	requireFailure(t, res, CodeValidation)

	res, err = f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, id, "LATE")
	require.NoError(t, err)
	requireFailure(t, res, CodeValidation)

	res, err = f.engine.UpdateAppointmentStatus(f.ctx, f.clinic.ID, uuid.New(), models.AppointmentConfirmed)
	require.NoError(t, err)
	requireFailure(t, res, CodeNotFound)

	other := f.addClinic("elsewhere")
	res, err = f.engine.UpdateAppointmentStatus(f.ctx, other.ID, id, models.AppointmentCancelled)
	require.NoError(t, err)
	requireFailure(t, res, CodeNotFound)

	appt, err := f.store.GetAppointment(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)
}

func TestParseConflictScope(t *testing.T) {
	s, err := ParseConflictScope("")
	require.NoError(t, err)
	assert.Equal(t, ConflictScopeClinic, s)

	s, err = ParseConflictScope(" Doctor ")
	require.NoError(t, err)
	assert.Equal(t, ConflictScopeDoctor, s)

	_, err = ParseConflictScope("room")
	require.Error(t, err)
}

func TestScheduledAppointmentsNeverOverlap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		p := f.addPatient("Asha")

		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			start := rapid.IntRange(0, 20*60).Draw(rt, "start")
			length := rapid.IntRange(1, 180).Draw(rt, "length")
			f.book(p.ID, nil, day.Add(time.Duration(start)*time.Minute), day.Add(time.Duration(start+length)*time.Minute))
		}

		appts := f.state().Appointments
		for i := range appts {
			for j := i + 1; j < len(appts); j++ {
				if appts[i].Overlaps(appts[j].StartTime, appts[j].EndTime) {
					rt.Fatalf("appointments %d and %d overlap", i, j)
				}
			}
		}
	})
}
