package datafield

// Separator splits a data field into the function selector and its hex-encoded arguments.
const Separator = '@'

// Transfer-bearing selectors. These strings are part of the wire contract.
const (
	SelectorESDTTransfer         = "ESDTTransfer"
	SelectorESDTNFTTransfer      = "ESDTNFTTransfer"
	SelectorMultiESDTNFTTransfer = "MultiESDTNFTTransfer"
)

type selectorKind int

const (
	selectorUnknown selectorKind = iota
	selectorSingle
	selectorSingleNFT
	selectorMulti
)

var selectors = map[string]selectorKind{
	SelectorESDTTransfer:         selectorSingle,
	SelectorESDTNFTTransfer:      selectorSingleNFT,
	SelectorMultiESDTNFTTransfer: selectorMulti,
}

// IsTransferSelector reports whether the selector is known to move tokens.
func IsTransferSelector(selector string) bool {
	_, ok := selectors[selector]
	return ok
}

// Selectors returns the known transfer-bearing selectors.
func Selectors() []string {
	return []string{
		SelectorESDTTransfer,
		SelectorESDTNFTTransfer,
		SelectorMultiESDTNFTTransfer,
	}
}
