package segments

// Truncate returns a copy of l with every endpoint truncated toward zero.
// Ordering is preserved, and a list that was disjoint stays disjoint.
func Truncate[T Number](l List[T]) List[int64] {
	out := make(List[int64], len(l))
	for i, s := range l {
		out[i] = Seg(int64(s.Start), int64(s.End))
	}
	return out
}

// Integral wraps fn so that the list it returns has whole-unit endpoints.
func Integral[P any, T Number](fn func(P) List[T]) func(P) List[int64] {
	return func(p P) List[int64] {
		return Truncate(fn(p))
	}
}

// IntegralErr is Integral for functions that can fail.
func IntegralErr[P any, T Number](fn func(P) (List[T], error)) func(P) (List[int64], error) {
	return func(p P) (List[int64], error) {
		l, err := fn(p)
		if err != nil {
			return nil, err
		}
		return Truncate(l), nil
	}
}
