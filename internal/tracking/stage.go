// Package tracking reports the delivery progress of an order.
package tracking

// Stage is a position in the delivery pipeline.
type Stage int

const (
	StageConfirmed Stage = iota
	StageProcessing
	StageShipping
	StageDelivered
)

// StageCount is the number of stages in the pipeline.
const StageCount = 4

var (
	statusText = [StageCount]string{"Order Confirmed", "Order Processing", "Order Shipped", "Order Delivered"}
	stepText   = [StageCount]string{"Confirmed", "Processing", "Shipping", "Delivered"}
	// days until delivery; the last stage has none
	deliveryDays = [StageCount]int{7, 5, 2, 0}
)

// Valid reports whether s is one of the four stages.
func (s Stage) Valid() bool {
	return s >= StageConfirmed && s <= StageDelivered
}

// Label is the status text shown for the stage.
func (s Stage) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return statusText[s]
}

func (s Stage) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepText[s]
}

// Progress is the completion percentage, 25 per reached stage.
func (s Stage) Progress() int {
	if !s.Valid() {
		return 0
	}
	return (int(s) + 1) * 25
}
