package consts

const (
	ServiceName = "chainparsers"
	ProjectName = "data/chainparsers"
)
