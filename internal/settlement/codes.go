package settlement

import "fmt"

// Code is a semantic settlement error kind, the same flavor as the teacher's
// tx.Result: a typed, comparable code rather than a bare string, so command
// dispatch (internal/rpc, internal/grpc) can map it to a precise wire error
// without parsing messages. The set is exactly spec.md §7's error kinds,
// plus two additions: AlreadyApplied for the idempotent-replay guard
// (SPEC_FULL.md §5.1), and Internal for collaborator and otherwise
// unclassified failures.
type Code int

const (
	CodeOK Code = iota
	CodeInvalidIndex
	CodeNotEnoughFunds
	CodeNotEnoughTokenAvailable
	CodeNoPermission
	CodeSpvAlreadyCreated
	CodeSpvNotCreated
	CodeUserNotWhitelisted
	CodeArithmeticUnderflow
	CodeArithmeticOverflow
	CodeTokenNotForSale
	CodeNftNotFound
	CodeTooManyTokenBuyer
	CodeRegionUnknown
	CodeLocationUnknown
	CodeTooManyToken
	CodeTokenAmountTooLow
	CodeOnlyOneOfferPerUser
	CodeLawyerJobTaken
	CodeLawyerNotFound
	CodeAlreadyConfirmed
	CodeCostsTooHigh
	CodePaymentAssetNotSupported
	CodeExceedsMaxEntries
	CodeTokenNotRefunded
	CodeListingDurationCantBeZero
	CodePropertyAlreadySold
	CodeListingExpired
	CodeNoTokenBought
	CodeListingNotExpired
	CodeInvalidTokenPrice
	CodeAmountCannotBeZero
	CodeInvalidFeePercentage
	CodeInvalidTaxPercentage
	CodeNotEnoughToken
	CodeTokenNotReturned
	CodeListingDurationTooHigh
	CodeWrongRegion
	CodeTokenOwnerNotFound
	CodeAlreadyApplied
	CodeInternal
)

var codeNames = map[Code]string{
	CodeOK:                        "ok",
	CodeInvalidIndex:              "InvalidIndex",
	CodeNotEnoughFunds:            "NotEnoughFunds",
	CodeNotEnoughTokenAvailable:   "NotEnoughTokenAvailable",
	CodeNoPermission:              "NoPermission",
	CodeSpvAlreadyCreated:         "SpvAlreadyCreated",
	CodeSpvNotCreated:             "SpvNotCreated",
	CodeUserNotWhitelisted:        "UserNotWhitelisted",
	CodeArithmeticUnderflow:       "ArithmeticUnderflow",
	CodeArithmeticOverflow:        "ArithmeticOverflow",
	CodeTokenNotForSale:           "TokenNotForSale",
	CodeNftNotFound:               "NftNotFound",
	CodeTooManyTokenBuyer:         "TooManyTokenBuyer",
	CodeRegionUnknown:             "RegionUnknown",
	CodeLocationUnknown:           "LocationUnknown",
	CodeTooManyToken:              "TooManyToken",
	CodeTokenAmountTooLow:         "TokenAmountTooLow",
	CodeOnlyOneOfferPerUser:       "OnlyOneOfferPerUser",
	CodeLawyerJobTaken:            "LawyerJobTaken",
	CodeLawyerNotFound:            "LawyerNotFound",
	CodeAlreadyConfirmed:          "AlreadyConfirmed",
	CodeCostsTooHigh:              "CostsTooHigh",
	CodePaymentAssetNotSupported:  "PaymentAssetNotSupported",
	CodeExceedsMaxEntries:         "ExceedsMaxEntries",
	CodeTokenNotRefunded:          "TokenNotRefunded",
	CodeListingDurationCantBeZero: "ListingDurationCantBeZero",
	CodePropertyAlreadySold:       "PropertyAlreadySold",
	CodeListingExpired:            "ListingExpired",
	CodeNoTokenBought:             "NoTokenBought",
	CodeListingNotExpired:         "ListingNotExpired",
	CodeInvalidTokenPrice:         "InvalidTokenPrice",
	CodeAmountCannotBeZero:        "AmountCannotBeZero",
	CodeInvalidFeePercentage:      "InvalidFeePercentage",
	CodeInvalidTaxPercentage:      "InvalidTaxPercentage",
	CodeNotEnoughToken:            "NotEnoughToken",
	CodeTokenNotReturned:          "TokenNotReturned",
	CodeListingDurationTooHigh:    "ListingDurationTooHigh",
	CodeWrongRegion:               "WrongRegion",
	CodeTokenOwnerNotFound:        "TokenOwnerNotFound",
	CodeAlreadyApplied:            "AlreadyApplied",
	CodeInternal:                  "Internal",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error wraps a Code with the failing field/value and an optional cause,
// mirroring how the teacher's handlers return a tx.Result paired with a
// descriptive Go error rather than a bare string.
type Error struct {
	Code  Code
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Err builds a plain *Error for the given code.
func Err(code Code) error {
	return &Error{Code: code}
}

// Errf builds an *Error with a formatted field description.
func Errf(code Code, format string, args ...any) error {
	return &Error{Code: code, Field: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Code to an underlying error from a collaborator or from
// ledgercore's checked arithmetic.
func Wrap(code Code, cause error) error {
	return &Error{Code: code, Cause: cause}
}

// CodeOf extracts the Code from err, or CodeInternal if err is not a
// *Error (e.g. it came straight from an external collaborator).
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var se *Error
	if ok := asError(err, &se); ok {
		return se.Code
	}
	return CodeInternal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if se, ok := err.(*Error); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
