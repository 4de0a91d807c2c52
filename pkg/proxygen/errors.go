package proxygen

import "errors"

// ErrInvalidContract reports malformed generation input: an empty or
// illegal class, contract, or method name, or a void parameter kind.
// Resolution failures of well-formed contracts are not generation
// errors; they are compiled into the artifact's static initializer and
// surface on the JVM at type-initialization time.
var ErrInvalidContract = errors.New("proxygen: invalid contract")
