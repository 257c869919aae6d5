package mocks

// CallLog records arguments of each call to a mocked method.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Last returns the arguments of the latest call.
//
// It panics when the method has not been called.
func (l CallLog[T]) Last() T {
	if len(l) == 0 {
		panic("no calls are recorded")
	}
	return l[len(l)-1]
}
