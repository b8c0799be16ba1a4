package model

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned by ValidateRequest.
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidAssignment is returned by CheckAssignments.
var ErrInvalidAssignment = errors.New("invalid assignment")

// ValidateRequest checks a request before it is sent to the solver.
func ValidateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if len(req.Orders) == 0 {
		return fmt.Errorf("%w: no orders provided", ErrInvalidRequest)
	}
	if len(req.Shoppers) == 0 {
		return fmt.Errorf("%w: no shoppers provided", ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(req.Orders))
	for _, o := range req.Orders {
		if o.ID == "" {
			return fmt.Errorf("%w: order with empty id", ErrInvalidRequest)
		}
		if _, ok := seen[o.ID]; ok {
			return fmt.Errorf("%w: duplicate order %s", ErrInvalidRequest, o.ID)
		}
		seen[o.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(req.Shoppers))
	for _, s := range req.Shoppers {
		if s.ID == "" {
			return fmt.Errorf("%w: shopper with empty id", ErrInvalidRequest)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("%w: duplicate shopper %s", ErrInvalidRequest, s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return nil
}

// CheckAssignments verifies that every assigned order was part of the
// request and that no order is assigned twice.
func CheckAssignments(orders []Order, resp *OptimizeResponse) error {
	if resp == nil {
		return nil
	}

	known := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		known[o.ID] = struct{}{}
	}

	assigned := make(map[string]string)
	for _, a := range resp.Assignments {
		for _, id := range a.Route {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%w: shopper %s has unknown order %s", ErrInvalidAssignment, a.ShopperID, id)
			}
			if prev, ok := assigned[id]; ok {
				return fmt.Errorf("%w: order %s assigned to both %s and %s", ErrInvalidAssignment, id, prev, a.ShopperID)
			}
			assigned[id] = a.ShopperID
		}
	}

	return nil
}
