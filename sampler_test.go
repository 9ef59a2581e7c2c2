// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"testing"
	"time"
)

func TestRandomSamplerRateBounds(t *testing.T) {
	alwaysKeep := NewRandomSampler(1, 1)
	for i := 0; i < 50; i++ {
		if alwaysKeep.Sample(Record{}) != SamplingKeep {
			t.Fatal("rate=1 sampler should always keep")
		}
	}
	alwaysDrop := NewRandomSampler(0, 1)
	for i := 0; i < 50; i++ {
		if alwaysDrop.Sample(Record{}) != SamplingDrop {
			t.Fatal("rate=0 sampler should always drop")
		}
	}
}

func TestRandomSamplerIsDeterministicForFixedSeed(t *testing.T) {
	a := NewRandomSampler(0.5, 42)
	b := NewRandomSampler(0.5, 42)
	for i := 0; i < 20; i++ {
		if a.Sample(Record{}) != b.Sample(Record{}) {
			t.Fatalf("two samplers with the same seed diverged at call %d", i)
		}
	}
}

func TestRateLimitSamplerEnforcesCapacity(t *testing.T) {
	s := NewRateLimitSampler(3, time.Hour)
	kept := 0
	for i := 0; i < 10; i++ {
		if s.Sample(Record{}) == SamplingKeep {
			kept++
		}
	}
	if kept != 3 {
		t.Errorf("expected exactly 3 kept within one window, got %d", kept)
	}
}

func TestRateLimitSamplerRefillsAfterWindow(t *testing.T) {
	s := NewRateLimitSampler(1, 10*time.Millisecond)
	if s.Sample(Record{}) != SamplingKeep {
		t.Fatal("first call should be kept")
	}
	if s.Sample(Record{}) != SamplingDrop {
		t.Fatal("second call within the same window should be dropped")
	}
	time.Sleep(20 * time.Millisecond)
	if s.Sample(Record{}) != SamplingKeep {
		t.Fatal("call after the window elapses should be kept again")
	}
}

func TestHashSamplerDeterministic(t *testing.T) {
	s := NewHashSampler("user_id", 0.5)
	r := Record{Fields: []Field{Str("user_id", "user-123")}}
	first := s.Sample(r)
	for i := 0; i < 10; i++ {
		if s.Sample(r) != first {
			t.Fatal("HashSampler should return the same verdict for the same key every time")
		}
	}
}

func TestHashSamplerMissingFieldDrops(t *testing.T) {
	s := NewHashSampler("user_id", 1)
	if s.Sample(Record{}) != SamplingDrop {
		t.Error("HashSampler should drop when its key field is absent")
	}
}

func TestAdaptiveSamplerLowersRateUnderLoad(t *testing.T) {
	s := NewAdaptiveSampler(5*time.Millisecond, 10, 50, 0.01, 1, 7)
	for i := 0; i < 1000; i++ {
		s.Sample(Record{})
	}
	time.Sleep(10 * time.Millisecond)
	s.Sample(Record{})
	rate := float64(s.effectiveRateX1000) / 1000
	if rate >= 1 {
		t.Errorf("expected effective rate to drop under high arrival rate, got %v", rate)
	}
}

func TestBypassSamplerLevelBypass(t *testing.T) {
	s := NewBypassSampler(NewRandomSampler(0, 1))
	s.SetBypassLevels(Critical)

	if s.Sample(Record{Level: Critical}) != SamplingKeep {
		t.Error("Critical should bypass a base sampler that always drops")
	}
	if s.Sample(Record{Level: Info}) != SamplingDrop {
		t.Error("Info should fall through to the dropping base sampler")
	}
}

func TestBypassSamplerFieldPresenceBypass(t *testing.T) {
	s := NewBypassSampler(NewRandomSampler(0, 1))
	s.SetBypassFields("force_log")

	r := Record{Fields: []Field{Bool("force_log", true)}}
	if s.Sample(r) != SamplingKeep {
		t.Error("presence of a bypass field should force SamplingKeep")
	}
}

func TestBypassSamplerFieldValueRateOverride(t *testing.T) {
	s := NewBypassSampler(NewRandomSampler(0, 1))
	s.SetFieldRate("tier", "premium", 1)

	r := Record{Fields: []Field{Str("tier", "premium")}}
	if s.Sample(r) != SamplingKeep {
		t.Error("field-value rate override of 1 should always keep")
	}

	other := Record{Fields: []Field{Str("tier", "free")}}
	if s.Sample(other) != SamplingDrop {
		t.Error("non-matching field value should fall through to the base sampler")
	}
}

func TestBypassSamplerCategoryRateOverride(t *testing.T) {
	s := NewBypassSampler(NewRandomSampler(0, 1))
	s.SetCategoryRate("billing", 1)

	r := Record{Fields: []Field{Category("billing")}}
	if s.Sample(r) != SamplingKeep {
		t.Error("category rate override of 1 should always keep")
	}
}

func TestBypassSamplerStatsAccounting(t *testing.T) {
	s := NewBypassSampler(NewRandomSampler(1, 1))
	s.SetBypassLevels(Critical)

	s.Sample(Record{Level: Critical})
	s.Sample(Record{Level: Info})

	stats := s.Stats()
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.Bypassed != 1 {
		t.Errorf("Bypassed = %d, want 1", stats.Bypassed)
	}
	if stats.Sampled != 2 {
		t.Errorf("Sampled = %d, want 2 (1 bypassed-keep + 1 base-keep)", stats.Sampled)
	}
	if rate := stats.SamplingRate(); rate != 1 {
		t.Errorf("SamplingRate() = %v, want 1", rate)
	}
}

func TestSamplerStatsEmptyRateIsOne(t *testing.T) {
	var stats SamplerStats
	if stats.SamplingRate() != 1 {
		t.Error("an empty stats snapshot should report a sampling rate of 1")
	}
}
