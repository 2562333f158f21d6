package model

// Budget is the single per-user budget document. A nil *Budget means the
// document doesn't exist yet and the configured default is in effect.
type Budget struct {
	Amount float64 `bson:"budget"`
}
