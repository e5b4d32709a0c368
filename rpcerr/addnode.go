package rpcerr

// AddnodeCommand is one of the three subcommands spec §6 names for addnode.
type AddnodeCommand string

const (
	AddnodeAdd    AddnodeCommand = "add"
	AddnodeRemove AddnodeCommand = "remove"
	AddnodeOneTry AddnodeCommand = "onetry"
)

// ParseAddnodeCommand validates the addnode subcommand argument, returning
// CodeInvalidAddnodeCommand for anything other than the three the spec
// names.
func ParseAddnodeCommand(s string) (AddnodeCommand, error) {
	switch AddnodeCommand(s) {
	case AddnodeAdd, AddnodeRemove, AddnodeOneTry:
		return AddnodeCommand(s), nil
	default:
		return "", errCode(CodeInvalidAddnodeCommand)
	}
}
