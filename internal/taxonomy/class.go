package taxonomy

// ClassOf returns the class for a given mismatch kind.
func ClassOf(k Kind) Class {
	class, ok := classMap[k]
	if !ok {
		return ClassInternal // anything unrecognized is our bug
	}
	return class
}

// Kinds returns every mismatch kind, assertions first.
func Kinds() []Kind {
	return []Kind{
		UnexpectedError, ErrorMessageMismatch, MissingTypeComment,
		TypeMismatch, NotRaised,
		UnparseableTypeInfo, UnknownSeverity, ForeignFileDiagnostic,
		CheckerInvocationFailed,
	}
}

var classMap = map[Kind]Class{
	UnexpectedError:      ClassAssertion,
	ErrorMessageMismatch: ClassAssertion,
	MissingTypeComment:   ClassAssertion,
	TypeMismatch:         ClassAssertion,
	NotRaised:            ClassAssertion,

	UnparseableTypeInfo:     ClassInternal,
	UnknownSeverity:         ClassInternal,
	ForeignFileDiagnostic:   ClassInternal,
	CheckerInvocationFailed: ClassInternal,
}
