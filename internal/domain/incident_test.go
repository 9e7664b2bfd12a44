package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIncidentRecord_State(t *testing.T) {
	tests := []struct {
		name   string
		record *IncidentRecord
		want   IncidentState
	}{
		{"nil record", nil, StateNone},
		{"record without incident id", &IncidentRecord{GroupKey: "p1/c1"}, StateNone},
		{
			"firing record",
			&IncidentRecord{GroupKey: "p1/c1", IncidentID: "inc_1", LastStatus: StatusFiring},
			StateOpen,
		},
		{
			"resolved record",
			&IncidentRecord{GroupKey: "p1/c1", IncidentID: "inc_1", LastStatus: StatusResolved},
			StateResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.State())
		})
	}
}

func TestIncidentRecord_Clone(t *testing.T) {
	rec := &IncidentRecord{
		GroupKey:      "p1/c1",
		IncidentID:    "inc_1",
		LastStatus:    StatusFiring,
		LastUpdatedAt: time.Now(),
		Version:       3,
	}

	cp := rec.Clone()
	cp.Version = 4
	cp.IncidentID = "inc_2"

	assert.Equal(t, int64(3), rec.Version)
	assert.Equal(t, "inc_1", rec.IncidentID)

	var nilRec *IncidentRecord
	assert.Nil(t, nilRec.Clone())
}

func TestSeverityOrdering(t *testing.T) {
	assert.Equal(t, ImpactCritical, MaxImpact(ImpactMinor, ImpactCritical))
	assert.Equal(t, ImpactMajor, MaxImpact(ImpactMajor, ImpactNone))
	assert.Equal(t, ImpactMaintenance, MaxImpact(ImpactNone, ImpactMaintenance))

	assert.Equal(t, ComponentMajorOutage, MaxComponentStatus(ComponentPartialOutage, ComponentMajorOutage))
	assert.Equal(t, ComponentPartialOutage, MaxComponentStatus(ComponentPartialOutage, ComponentOperational))

	assert.Equal(t, IncidentMonitoring, MaxIncidentStatus(IncidentIdentified, IncidentMonitoring))
}

func TestComponentStatus_DefaultImpact(t *testing.T) {
	tests := []struct {
		status ComponentStatus
		want   Impact
	}{
		{ComponentOperational, ImpactNone},
		{ComponentUnderMaintenance, ImpactMaintenance},
		{ComponentDegradedPerformance, ImpactMinor},
		{ComponentPartialOutage, ImpactMajor},
		{ComponentMajorOutage, ImpactCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.DefaultImpact(), "status %s", tt.status)
	}
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, Impact("critical").Valid())
	assert.False(t, Impact("catastrophic").Valid())
	assert.True(t, ComponentStatus("partial_outage").Valid())
	assert.False(t, ComponentStatus("on_fire").Valid())
	assert.True(t, AlertStatus("firing").Valid())
	assert.False(t, AlertStatus("pending").Valid())
	assert.True(t, IncidentStatus("monitoring").Valid())
	assert.False(t, IncidentStatus("done").Valid())
}

func TestGroupKeyFor(t *testing.T) {
	assert.Equal(t, "p1/c1", GroupKeyFor("p1", "c1"))
	assert.Equal(t, GroupKeyFor("p1", "c1"), GroupKeyFor("p1", "c1"))
	assert.NotEqual(t, GroupKeyFor("p1", "c1"), GroupKeyFor("p1", "c2"))
}

func TestAppError(t *testing.T) {
	base := errors.New("connection refused")
	err := ErrRemoteFailure.WithError(base)

	assert.ErrorIs(t, err, ErrRemoteFailure)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 502, err.StatusCode)

	assert.NotErrorIs(t, err, ErrVersionConflict)
}

func TestValidationErrorBuilders(t *testing.T) {
	err := MissingField("statuspagePageId")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "statuspagePageId")

	err = InvalidEnum("statuspageImpactOverride", "huge")
	assert.ErrorIs(t, err, ErrInvalidEnum)
	assert.Contains(t, err.Error(), "huge")
}
