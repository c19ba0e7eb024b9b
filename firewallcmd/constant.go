package firewallcmd

const (
	flagPermanent = "--permanent"
	flagReload    = "--reload"
	flagGetIPSets = "--get-ipsets"
	flagGetEntry  = "--get-entries"
	flagState     = "--state"
)

const (
	infoKeyType    = "type"
	infoKeyOptions = "options"
	infoKeyEntries = "entries"
)

const (
	defaultBatchFilePrefix = "ipset-"
	notRunningExitCode     = 252
)
