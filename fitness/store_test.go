package fitness

import (
	"testing"
	"time"

	"github.com/hridamrit/hridamrit/health_fields"
)

func TestService_UpsertLink(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	first := health_fields.FitnessLink{
		UserID:      7,
		AccessToken: "at-1",
		Height:      int64Ptr(180),
		Weight:      int64Ptr(80),
		Steps:       int64Ptr(1000),
		Calories:    int64Ptr(2000),
	}
	if err := env.Service.UpsertLink(first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// second write replaces every column, including a nil height
	synced := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	second := health_fields.FitnessLink{
		UserID:      7,
		AccessToken: "at-2",
		Height:      nil,
		Weight:      int64Ptr(79),
		Steps:       int64Ptr(5000),
		Calories:    int64Ptr(2100),
		LastSynced:  &synced,
	}
	if err := env.Service.UpsertLink(second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	env.DB.Model(&health_fields.FitnessLink{}).Where("user_id = ?", 7).Count(&count)
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	link, found, err := env.Service.GetLink(7)
	if err != nil || !found {
		t.Fatalf("get link: found=%v err=%v", found, err)
	}
	if link.AccessToken != "at-2" {
		t.Errorf("access token = %q, want at-2", link.AccessToken)
	}
	if link.Height != nil {
		t.Errorf("height = %v, want nil after replacement", *link.Height)
	}
	if link.Weight == nil || *link.Weight != 79 {
		t.Errorf("weight = %v, want 79", link.Weight)
	}
	if link.LastSynced == nil || !link.LastSynced.Equal(synced) {
		t.Errorf("last synced = %v, want %v", link.LastSynced, synced)
	}
}

func TestService_GetLink_notFound(t *testing.T) {
	env := newTestEnv(t, health_fields.Config{})

	_, found, err := env.Service.GetLink(42)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if found {
		t.Error("found = true for a user who never linked")
	}
}
