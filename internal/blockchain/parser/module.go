package parser

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	NewParserBuilder(KindTransaction, NewTransactionParser).Build(),
	NewParserBuilder(KindTransfer, NewTransferParser).Build(),
	fx.Provide(NewRegistry),
)
