package orders

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	orderNumberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberRandLen = 6
)

var (
	numberMu     sync.Mutex
	numberSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewOrderNumber generates an order number of the form
// ORD-<unix-millis>-<6 random base36 chars>. Collisions are possible and
// handled by the caller retrying on the unique index.
func NewOrderNumber() string {
	numberMu.Lock()
	defer numberMu.Unlock()

	suffix := make([]byte, orderNumberRandLen)
	for i := range suffix {
		suffix[i] = orderNumberCharset[numberSource.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
