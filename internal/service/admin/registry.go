package admin

import "context"

// StaticRegistry recognizes a single operator configured at startup.
// A zero id disables privileged commands entirely.
type StaticRegistry struct {
	operator int64
}

func NewStaticRegistry(operator int64) *StaticRegistry {
	return &StaticRegistry{operator: operator}
}

func (r *StaticRegistry) IsActiveOperator(_ context.Context, identity int64) bool {
	return r.operator != 0 && identity == r.operator
}
