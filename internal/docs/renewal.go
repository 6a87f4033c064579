package docs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"leasegen/internal/core"
)

// signWindow is how long the tenant has to review and sign a renewal.
const signWindow = 14 * 24 * time.Hour

// RenewalNotice writes the plain-text message that accompanies a lease
// renewal: first name, rent delta as a rounded whole percentage, and a
// sign-by date two weeks out from now. A renewal only makes sense against a
// known previous rent.
func RenewalNotice(tenantName string, previousRent, currentRent core.Money, now time.Time) (string, error) {
	if previousRent.Cents <= 0 {
		return "", core.ErrNoPreviousRent
	}

	firstName := tenantName
	if fields := strings.Fields(tenantName); len(fields) > 0 {
		firstName = fields[0]
	}

	increase := currentRent.Sub(previousRent)
	pct := int(math.Round(float64(increase.Cents) / float64(previousRent.Cents) * 100))
	signBy := now.Add(signWindow).Format("January 2, 2006")

	return fmt.Sprintf("Hi %s! I hope you're doing well. I wanted to thank you for being such a great tenant over the past year - I really appreciate how well you've taken care of the place. Attached is the lease renewal for the upcoming year. The rent will increase by %d%% (%s), bringing the monthly total to %s, and you'll see the updated payment schedule included in the lease. Please review and sign within the next two weeks, by %s, and let me know if you have any questions or concerns. Thanks again!",
		firstName, pct, FormatCurrency(increase), FormatCurrency(currentRent), signBy), nil
}
