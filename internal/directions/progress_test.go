package directions_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

// oneStepRoute is the first step of twoStepRoute on its own.
func oneStepRoute() directions.RouteResult {
	r := twoStepRoute()
	r.Legs[0].Steps = r.Legs[0].Steps[:1]
	r.Coordinates = r.Coordinates[:2]
	return r
}

func TestCheckProgress_InactiveOrStepless(t *testing.T) {
	c := newController()

	// Idle: nothing to do.
	c.CheckProgress(origin)
	if st := c.State(); st.IsOffRoute {
		t.Error("idle session must never be off-route")
	}

	// Active but no route yet: still a no-op.
	c.Start(origin, destination)
	c.CheckProgress(geo.Coordinate{Latitude: 53, Longitude: 5})
	if st := c.State(); st.IsOffRoute || st.CurrentStepIndex != 0 {
		t.Error("stepless session must ignore progress ticks")
	}

	// Preview sessions are inactive regardless of steps.
	c.End()
	c.Preview(origin, destination)
	c.ApplyRoute(twoStepRoute())
	c.CheckProgress(geo.Coordinate{Latitude: 53, Longitude: 5})
	if st := c.State(); st.IsOffRoute {
		t.Error("preview session must never be off-route")
	}
}

func TestCheckProgress_LastStepDoesNotAdvance(t *testing.T) {
	c := newController()
	c.Start(origin, destination)
	c.ApplyRoute(oneStepRoute())

	// User exactly at the only step's end location.
	c.CheckProgress(geo.Coordinate{Latitude: 52.001, Longitude: 4.000})

	st := c.State()
	if st.CurrentStepIndex != 0 {
		t.Errorf("single-step route must stay at index 0, got %d", st.CurrentStepIndex)
	}
	if st.IsOffRoute {
		t.Error("user on the route must not be off-route")
	}
}

func TestCheckProgress_AdvancesWithinArrivalRadius(t *testing.T) {
	c := newController()
	c.Start(origin, destination)
	c.ApplyRoute(twoStepRoute())

	// Exactly at the first step's end.
	c.CheckProgress(geo.Coordinate{Latitude: 52.001, Longitude: 4.000})

	st := c.State()
	if st.CurrentStepIndex != 1 {
		t.Errorf("expected advance to step 1, got %d", st.CurrentStepIndex)
	}
	if st.IsOffRoute {
		t.Error("user at a step boundary must not be off-route")
	}

	// At the final step's end: stays on the last step.
	c.CheckProgress(geo.Coordinate{Latitude: 52.002, Longitude: 4.000})
	if st := c.State(); st.CurrentStepIndex != 1 {
		t.Errorf("expected to remain at last step, got %d", st.CurrentStepIndex)
	}
}

func TestCheckProgress_OffRouteDetection(t *testing.T) {
	c := newController()
	c.Start(origin, destination)
	c.ApplyRoute(twoStepRoute())

	// ~222m past the northern end of the polyline.
	far := geo.Coordinate{Latitude: 52.004, Longitude: 4.000}
	c.CheckProgress(far)
	if st := c.State(); !st.IsOffRoute {
		t.Error("expected off-route at ~222m from the route")
	}

	// Back onto the route clears the flag.
	c.CheckProgress(geo.Coordinate{Latitude: 52.0015, Longitude: 4.000})
	if st := c.State(); st.IsOffRoute {
		t.Error("expected off-route cleared on return")
	}
}

func TestCheckProgress_DeadBandChangesNothing(t *testing.T) {
	var changes int
	c := directions.NewController(directions.ControllerConfig{
		Logger:   zerolog.Nop(),
		OnChange: func(directions.State) { changes++ },
	})
	c.Start(origin, destination)
	c.ApplyRoute(twoStepRoute())
	before := c.State()
	changesBefore := changes

	// ~44m east of the route: beyond the 25m arrival radius, inside the
	// 50m deviation radius.
	c.CheckProgress(geo.Coordinate{Latitude: 52.0005, Longitude: 4.00065})

	st := c.State()
	if st.CurrentStepIndex != before.CurrentStepIndex {
		t.Errorf("step index changed: %d -> %d", before.CurrentStepIndex, st.CurrentStepIndex)
	}
	if st.IsOffRoute != before.IsOffRoute {
		t.Error("off-route flag changed inside the dead band")
	}
	if changes != changesBefore {
		t.Errorf("expected no change notification, got %d", changes-changesBefore)
	}

	// Repeating an identical off-route tick also stays quiet.
	c.CheckProgress(geo.Coordinate{Latitude: 52.004, Longitude: 4.000})
	changesBefore = changes
	c.CheckProgress(geo.Coordinate{Latitude: 52.004, Longitude: 4.000})
	if changes != changesBefore {
		t.Error("expected no notification for an unchanged off-route tick")
	}
}

func TestCheckProgress_FallsBackToStepSegment(t *testing.T) {
	c := newController()
	c.Start(origin, destination)

	r := twoStepRoute()
	r.Coordinates = nil // provider sent no polyline
	c.ApplyRoute(r)

	// Near the current step's segment: on route.
	c.CheckProgress(geo.Coordinate{Latitude: 52.0005, Longitude: 4.0001})
	if st := c.State(); st.IsOffRoute {
		t.Error("expected on-route against the step segment")
	}

	// Far from the current step's segment.
	c.CheckProgress(geo.Coordinate{Latitude: 52.0005, Longitude: 4.002})
	if st := c.State(); !st.IsOffRoute {
		t.Error("expected off-route against the step segment")
	}
}

func TestController_NotifiesOnRealChangesOnly(t *testing.T) {
	var changes int
	c := directions.NewController(directions.ControllerConfig{
		Logger:   zerolog.Nop(),
		OnChange: func(directions.State) { changes++ },
	})

	c.Start(origin, destination) // 1
	c.ApplyRoute(twoStepRoute()) // 2
	c.SetTransportMode(directions.ModeWalking)
	if changes != 2 {
		t.Errorf("setting the current mode must not notify, got %d changes", changes)
	}

	c.SetLoading(false) // already false
	c.PrevStep()        // clamped, no movement
	if changes != 2 {
		t.Errorf("no-op operations must not notify, got %d changes", changes)
	}

	c.NextStep() // 3
	c.End()      // 4
	if changes != 4 {
		t.Errorf("expected 4 change notifications, got %d", changes)
	}
}
