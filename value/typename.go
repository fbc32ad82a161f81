package value

// InferKind returns the Rill type name of v.
func InferKind(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// CheckType reports whether v's inferred type matches the declared
// type name T.
func CheckType(v Value, t string) bool {
	return string(InferKind(v)) == t
}
