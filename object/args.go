package object

// Require checks that exactly count arguments were given to funcName.
func Require(funcName string, count int, args []Object) *Error {
	nArgs := len(args)
	if nArgs != count {
		if count == 1 {
			return TypeErrorf("%s() takes exactly 1 argument (%d given)", funcName, nArgs)
		}
		return TypeErrorf("%s() takes exactly %d arguments (%d given)", funcName, count, nArgs)
	}
	return nil
}

// RequireRange checks that between min and max arguments were given.
func RequireRange(funcName string, min, max int, args []Object) *Error {
	nArgs := len(args)
	if nArgs < min {
		return TypeErrorf("%s() takes at least %d %s (%d given)",
			funcName, min, pluralize("argument", min > 1), nArgs)
	} else if nArgs > max {
		return TypeErrorf("%s() takes at most %d %s (%d given)",
			funcName, max, pluralize("argument", max > 1), nArgs)
	}
	return nil
}

func pluralize(s string, do bool) string {
	if do {
		return s + "s"
	}
	return s
}
