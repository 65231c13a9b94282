package maintenance

import (
	"context"
	"testing"
	"time"

	"iotplatform-backend/internal/devices"
	"iotplatform-backend/internal/notify"
	"iotplatform-backend/internal/users"
)

const testOrg = "org-1"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Repo:    NewMemoryRepo(),
		Devices: devices.NewService(devices.NewMemoryRepo()),
		Users:   users.NewService(users.NewMemoryRepo()),
		Notify:  &notify.Emitter{},
	}
}

func mustCreate(t *testing.T, svc *Service, task Task) Task {
	t.Helper()
	task.OrganizationID = testOrg
	created, err := svc.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("Create(%q): %v", task.TaskName, err)
	}
	return created
}

func TestCompleteRecurringResetsToPending(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{
		DeviceID:  "dev-1",
		TaskName:  "Filter Replacement",
		Frequency: "every 90 days",
	})

	completed, err := svc.Complete(context.Background(), testOrg, created.ID, "user-1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	today := DateOnly(time.Now().UTC())
	if completed.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", completed.Status)
	}
	if completed.LastMaintenance == nil || !completed.LastMaintenance.Equal(today) {
		t.Errorf("lastMaintenance = %v, want %s", completed.LastMaintenance, today.Format(dateLayout))
	}
	if want := today.AddDate(0, 0, 90); !completed.NextMaintenance.Equal(want) {
		t.Errorf("nextMaintenance = %s, want %s",
			completed.NextMaintenance.Format(dateLayout), want.Format(dateLayout))
	}
	if completed.LastCycleOutcome != OutcomeCompleted {
		t.Errorf("lastCycleOutcome = %q, want COMPLETED", completed.LastCycleOutcome)
	}
}

func TestCompleteWithoutFrequencyIsTerminal(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{
		DeviceID: "dev-1",
		TaskName: "Initial Inspection",
	})

	completed, err := svc.Complete(context.Background(), testOrg, created.ID, "user-1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %q, want terminal COMPLETED", completed.Status)
	}

	// An unparseable frequency degrades to terminal too, not an error.
	odd := mustCreate(t, svc, Task{
		DeviceID:  "dev-1",
		TaskName:  "Belt Check",
		Frequency: "when it rattles",
	})
	completed, err = svc.Complete(context.Background(), testOrg, odd.ID, "user-1")
	if err != nil {
		t.Fatalf("Complete with odd frequency: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %q, want terminal COMPLETED", completed.Status)
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Complete(context.Background(), testOrg, "missing", "user-1"); err != ErrNotFound {
		t.Fatalf("Complete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestWindowBoundaries(t *testing.T) {
	svc := newTestService(t)
	today := DateOnly(time.Now().UTC())

	dueToday := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "due-today", NextMaintenance: today})
	dueTomorrow := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "due-tomorrow", NextMaintenance: today.AddDate(0, 0, 1)})
	dueInFive := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "due-in-five", NextMaintenance: today.AddDate(0, 0, 5)})
	overdue := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "overdue", NextMaintenance: today.AddDate(0, 0, -1)})
	farOut := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "far-out", NextMaintenance: today.AddDate(0, 0, 40)})

	ctx := context.Background()

	assertNames := func(label string, got []Task, want ...string) {
		t.Helper()
		names := make(map[string]bool, len(got))
		for _, task := range got {
			names[task.TaskName] = true
		}
		if len(got) != len(want) {
			t.Errorf("%s returned %d tasks, want %d", label, len(got), len(want))
		}
		for _, name := range want {
			if !names[name] {
				t.Errorf("%s missing task %q", label, name)
			}
		}
	}

	todayTasks, err := svc.Today(ctx, testOrg)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	assertNames("Today", todayTasks, dueToday.TaskName)

	tomorrowTasks, err := svc.Tomorrow(ctx, testOrg)
	if err != nil {
		t.Fatalf("Tomorrow: %v", err)
	}
	assertNames("Tomorrow", tomorrowTasks, dueTomorrow.TaskName)

	// Next 7 days excludes today and the overdue task.
	upcoming, err := svc.NextNDays(ctx, testOrg, 7)
	if err != nil {
		t.Fatalf("NextNDays: %v", err)
	}
	assertNames("NextNDays(7)", upcoming, dueTomorrow.TaskName, dueInFive.TaskName)

	// A task due today is due today, not overdue.
	overdueTasks, err := svc.Overdue(ctx, testOrg)
	if err != nil {
		t.Fatalf("Overdue: %v", err)
	}
	assertNames("Overdue", overdueTasks, overdue.TaskName)

	_ = farOut
}

func TestRecentlyCompletedSeesRecurringTasks(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{
		DeviceID:  "dev-1",
		TaskName:  "Filter Replacement",
		Frequency: "monthly",
	})

	if _, err := svc.Complete(context.Background(), testOrg, created.ID, "user-1"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	recent, err := svc.RecentlyCompleted(context.Background(), testOrg, 7)
	if err != nil {
		t.Fatalf("RecentlyCompleted: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("RecentlyCompleted returned %d tasks, want 1", len(recent))
	}
	if recent[0].Status != StatusPending {
		t.Errorf("recurring task status = %q, want PENDING after completion", recent[0].Status)
	}
}

func TestRemoveDuplicatesKeepsEarliest(t *testing.T) {
	svc := newTestService(t)
	repo := svc.Repo.(*MemoryRepo)
	today := DateOnly(time.Now().UTC())

	base := time.Now().UTC().Add(-time.Hour)
	seed := func(id string, createdAt time.Time) {
		err := repo.Create(context.Background(), Task{
			ID:              id,
			OrganizationID:  testOrg,
			DeviceID:        "dev-1",
			TaskName:        "Filter Replacement",
			MaintenanceType: "GENERAL",
			NextMaintenance: today,
			Status:          StatusPending,
			CreatedAt:       createdAt,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	seed("dup-late", base.Add(10*time.Minute))
	seed("dup-early", base)
	seed("dup-mid", base.Add(5*time.Minute))

	removed, err := svc.RemoveDuplicates(context.Background(), testOrg, "dev-1")
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	left, err := svc.ListByDevice(context.Background(), testOrg, "dev-1")
	if err != nil {
		t.Fatalf("ListByDevice: %v", err)
	}
	if len(left) != 1 || left[0].ID != "dup-early" {
		t.Fatalf("surviving tasks = %+v, want only dup-early", left)
	}

	// A second run is a no-op.
	removed, err = svc.RemoveDuplicates(context.Background(), testOrg, "dev-1")
	if err != nil {
		t.Fatalf("RemoveDuplicates again: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second run removed = %d, want 0", removed)
	}
}

func TestAssignRequiresExistingUser(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "Lubrication"})

	if _, err := svc.Assign(context.Background(), testOrg, created.ID, "ghost", "actor-1"); err != ErrAssigneeNotFound {
		t.Fatalf("Assign(unknown user) error = %v, want ErrAssigneeNotFound", err)
	}

	if err := svc.Users.Repo.Create(context.Background(), users.User{
		ID:             "user-2",
		OrganizationID: testOrg,
		Email:          "tech@example.com",
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	assigned, err := svc.Assign(context.Background(), testOrg, created.ID, "user-2", "actor-1")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != "user-2" {
		t.Errorf("assignedTo = %v, want user-2", assigned.AssignedTo)
	}
	if assigned.AssignedBy == nil || *assigned.AssignedBy != "actor-1" {
		t.Errorf("assignedBy = %v, want actor-1", assigned.AssignedBy)
	}
	if assigned.AssignedAt == nil {
		t.Errorf("assignedAt not set")
	}
}

func TestBackfillDeviceNames(t *testing.T) {
	svc := newTestService(t)

	device, err := svc.Devices.Register(context.Background(), testOrg, "Pump A", "PUMP", "plant-1")
	if err != nil {
		t.Fatalf("register device: %v", err)
	}

	created, err := svc.Create(context.Background(), Task{
		OrganizationID: testOrg,
		DeviceID:       device.ID,
		TaskName:       "Seal Check",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DeviceName != "Pump A" {
		t.Fatalf("Create should denormalize device name, got %q", created.DeviceName)
	}

	// Blank the name to simulate legacy rows, then repair.
	created.DeviceName = ""
	if err := svc.Repo.Update(context.Background(), created); err != nil {
		t.Fatalf("blank device name: %v", err)
	}

	updated, err := svc.BackfillDeviceNames(context.Background(), testOrg)
	if err != nil {
		t.Fatalf("BackfillDeviceNames: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	repaired, err := svc.Get(context.Background(), testOrg, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if repaired.DeviceName != "Pump A" {
		t.Errorf("deviceName = %q, want Pump A", repaired.DeviceName)
	}
}

func TestUpdateDetailsReschedulesOnFrequencyChange(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{
		DeviceID:  "dev-1",
		TaskName:  "Belt Inspection",
		Frequency: "monthly",
	})

	freq := "every 90 days"
	notes := "use the long gauge"
	updated, err := svc.UpdateDetails(context.Background(), testOrg, created.ID, TaskPatch{
		Frequency: &freq,
		Notes:     &notes,
	})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	if updated.Frequency != freq {
		t.Errorf("frequency = %q, want %q", updated.Frequency, freq)
	}
	if want := DateOnly(time.Now().UTC()).AddDate(0, 0, 90); !updated.NextMaintenance.Equal(want) {
		t.Errorf("nextMaintenance = %s, want %s",
			updated.NextMaintenance.Format(dateLayout), want.Format(dateLayout))
	}
	if updated.Notes != notes {
		t.Errorf("notes = %q, want %q", updated.Notes, notes)
	}
	if updated.TaskName != "Belt Inspection" {
		t.Errorf("taskName changed to %q, want untouched", updated.TaskName)
	}
}

func TestUpdateDetailsRejectsBlankName(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "Belt Inspection"})

	blank := "   "
	if _, err := svc.UpdateDetails(context.Background(), testOrg, created.ID, TaskPatch{TaskName: &blank}); err != ErrInvalidInput {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

type recordingGate struct {
	delivered []notify.Notification
}

func (g *recordingGate) Deliver(_ context.Context, n notify.Notification) error {
	g.delivered = append(g.delivered, n)
	return nil
}

func TestAssignTargetsAssigneeInNotification(t *testing.T) {
	svc := newTestService(t)
	gate := &recordingGate{}
	svc.Notify = &notify.Emitter{Gate: gate}

	created := mustCreate(t, svc, Task{DeviceID: "dev-1", TaskName: "Lubrication"})
	if err := svc.Users.Repo.Create(context.Background(), users.User{
		ID:             "user-2",
		OrganizationID: testOrg,
		Email:          "tech@example.com",
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.Assign(context.Background(), testOrg, created.ID, "user-2", "actor-1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if len(gate.delivered) != 1 {
		t.Fatalf("notifications delivered = %d, want 1", len(gate.delivered))
	}
	n := gate.delivered[0]
	if n.UserID != "user-2" {
		t.Errorf("notification userId = %q, want the assignee", n.UserID)
	}
	if n.Category != notify.CategoryMaintenanceDue {
		t.Errorf("category = %q, want %q", n.Category, notify.CategoryMaintenanceDue)
	}
}

func TestNormalizePriorityIsCaseInsensitive(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"HIGH", PriorityHigh},
		{"High", PriorityHigh},
		{"high", PriorityHigh},
		{" critical ", PriorityCritical},
		{"low", PriorityLow},
		{"", PriorityMedium},
		{"urgent-ish", PriorityMedium},
	}
	for _, tc := range cases {
		if got := NormalizePriority(tc.raw); got != tc.want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
