package try

// something have method `Fatal`, like *testing.T or *log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either wraps a pair of (T, error).
//
// When the error is nil, the Either is "ok" and its value is valid.
type Either[T any] struct {
	value T
	err   error
}

func To[T any](value T, err error) Either[T] {
	if err != nil {
		return Either[T]{err: err}
	}
	return Either[T]{value: value}
}

func (e Either[T]) Get() (T, error) {
	return e.value, e.err
}

// OrDefault returns the value if ok, otherwise d.
func (e Either[T]) OrDefault(d T) T {
	if e.err != nil {
		return d
	}
	return e.value
}

// OrFatal returns the value if ok, otherwise calls ftl.Fatal(err).
//
// When ftl has `Helper()` (like *testing.T), it is called before Fatal.
func (e Either[T]) OrFatal(ftl Fataler) T {
	if e.err == nil {
		return e.value
	}
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(e.err)
	return e.value
}

// Map converts the value when e is ok.
func Map[T, R any](e Either[T], mapper func(T) R) Either[R] {
	if e.err != nil {
		return Either[R]{err: e.err}
	}
	return Either[R]{value: mapper(e.value)}
}
