package expr

// Kind tags a node.
type Kind uint8

const (
	KindConstant Kind = iota
	KindDefault
	KindVariable
	KindAssign
	KindBlock
	KindConditional
	KindLoop
	KindGoto
	KindLabel
	KindSwitch
	KindTry
	KindThrow
	KindCall
	KindInvoke
	KindLambda
	KindBinary
	KindUnary
	KindConvert
	KindTypeIs
	KindMember
	KindExtension
)

var kindNames = [...]string{
	KindConstant:    "Constant",
	KindDefault:     "Default",
	KindVariable:    "Variable",
	KindAssign:      "Assign",
	KindBlock:       "Block",
	KindConditional: "Conditional",
	KindLoop:        "Loop",
	KindGoto:        "Goto",
	KindLabel:       "Label",
	KindSwitch:      "Switch",
	KindTry:         "Try",
	KindThrow:       "Throw",
	KindCall:        "Call",
	KindInvoke:      "Invoke",
	KindLambda:      "Lambda",
	KindBinary:      "Binary",
	KindUnary:       "Unary",
	KindConvert:     "Convert",
	KindTypeIs:      "TypeIs",
	KindMember:      "Member",
	KindExtension:   "Extension",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}
