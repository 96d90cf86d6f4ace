package receiver

// ELRSParser is an alias for CRSFParser; ExpressLRS speaks CRSF to the
// flight controller.
type ELRSParser = CRSFParser

// NewELRSParser returns a CRSF parser.
func NewELRSParser() *ELRSParser {
	return NewCRSFParser()
}
