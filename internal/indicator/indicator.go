// Package indicator provides technical analysis indicators for financial markets
package indicator

import "fmt"

func errInsufficientData(period, have int) error {
	return fmt.Errorf("insufficient data: need at least %d values, have %d", period, have)
}
