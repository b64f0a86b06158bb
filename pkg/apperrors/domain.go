package apperrors

// Domain sentinels. Compare with errors.Is; they match on code.
var (
	ErrInvalidUsername       = New(CodeInvalidFormat, "username must be 3-32 chars of lowercase letters, digits, '_' or '-', starting and ending with a letter or digit")
	ErrReservedUsername      = New(CodeReservedUsername, "username is reserved")
	ErrUsernameTaken         = New(CodeUsernameTaken, "username is already taken")
	ErrKeyAlreadyRegistered  = New(CodeKeyAlreadyRegistered, "public key is already registered")
	ErrTimestampOutOfRange   = New(CodeTimestampOutOfRange, "request timestamp outside the accepted window")
	ErrReplayDetected        = New(CodeReplayDetected, "nonce has already been used")
	ErrInvalidSignature      = New(CodeInvalidSignature, "signature verification failed")
	ErrKeyNotActive          = New(CodeKeyNotActive, "signing key is not active")
	ErrAccountMismatch       = New(CodeAccountMismatch, "signing key belongs to a different account")
	ErrKeyLimitExceeded      = New(CodeKeyLimitExceeded, "account already has the maximum number of active keys")
	ErrLastActiveKeyProtected = New(CodeLastActiveKeyProtected, "cannot disable the last active key on an account")
	ErrAccountNotFound       = New(CodeNotFound, "account not found")
	ErrKeyNotFound           = New(CodeNotFound, "key not found")
)
