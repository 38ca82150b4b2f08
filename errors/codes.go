package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Transform errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Invalid token
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1008 ErrorCode = "E1008" // Invalid number literal

	// Transform errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unsupported statement shape
	E2002 ErrorCode = "E2002" // Top-level await outside an async cell
	E2003 ErrorCode = "E2003" // Reserved name

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Type error
	E3002 ErrorCode = "E3002" // Division by zero
	E3003 ErrorCode = "E3003" // Index out of bounds
	E3004 ErrorCode = "E3004" // Key not found
	E3005 ErrorCode = "E3005" // Undefined variable
	E3006 ErrorCode = "E3006" // Recursion limit
	E3007 ErrorCode = "E3007" // Invalid operation
	E3008 ErrorCode = "E3008" // Import error
	E3009 ErrorCode = "E3009" // Task cancelled
	E3010 ErrorCode = "E3010" // Invalid argument
	E3011 ErrorCode = "E3011" // Coroutine reused
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "invalid token",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1008: "invalid number literal",

	E2001: "unsupported statement shape",
	E2002: "top-level await outside an async cell",
	E2003: "reserved name",

	E3001: "type error",
	E3002: "division by zero",
	E3003: "index out of bounds",
	E3004: "key not found",
	E3005: "undefined variable",
	E3006: "recursion limit exceeded",
	E3007: "invalid operation",
	E3008: "import error",
	E3009: "task cancelled",
	E3010: "invalid argument",
	E3011: "coroutine reused",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "transform"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
