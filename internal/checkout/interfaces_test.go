package checkout

import (
	"github.com/angelmondragon/dronemart-backend/internal/cart"
	"github.com/angelmondragon/dronemart-backend/internal/orderevents"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
)

var (
	_ CartStore    = (*cart.Store)(nil)
	_ EventEmitter = (*orderevents.Emitter)(nil)
	_ db.TxRunner  = (*db.Client)(nil)
)
