package service

import (
	"fmt"
	"sync"

	"github.com/Sentinel-Gate/appgate/internal/domain/pricing"
)

// SubscriptionGate is the subscription_required view. It presents a fixed
// plan catalogue and tracks the selected plan. It performs no access check
// of its own.
type SubscriptionGate struct {
	plans []pricing.Plan

	mu       sync.Mutex
	selected string
}

// NewSubscriptionGate creates a gate over plans. With no plans the default
// catalogue is used.
func NewSubscriptionGate(plans []pricing.Plan) *SubscriptionGate {
	if len(plans) == 0 {
		plans = pricing.DefaultPlans()
	}
	selected := plans[0].ID
	for _, p := range plans {
		if p.ID == pricing.DefaultPlanID {
			selected = p.ID
		}
	}
	return &SubscriptionGate{plans: plans, selected: selected}
}

// Plans returns the catalogue.
func (s *SubscriptionGate) Plans() []pricing.Plan {
	out := make([]pricing.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

// Select marks id as the chosen plan.
func (s *SubscriptionGate) Select(id string) error {
	for _, p := range s.plans {
		if p.ID == id {
			s.mu.Lock()
			s.selected = id
			s.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("unknown plan %q", id)
}

// Selected returns the chosen plan.
func (s *SubscriptionGate) Selected() pricing.Plan {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == id {
			return p
		}
	}
	return s.plans[0]
}
