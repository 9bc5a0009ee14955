package util

// Ptr returns &v, for optional fields set from literals or config values
func Ptr[T any](v T) *T { return &v }
