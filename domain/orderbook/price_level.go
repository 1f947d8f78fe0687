package orderbook

// PriceLevel is the FIFO of resting orders at one price. Links are intrusive
// so enqueue, pop and mid-queue unlink are all O(1) with no allocation.
type PriceLevel struct {
	Price int64

	head *Order
	tail *Order

	TotalQty   int64
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.Open
	p.OrderCount++
}

func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}
	p.unlink(o)
	return o
}

// Unlink removes an order from anywhere in the queue. The order must be
// resting on this level.
func (p *PriceLevel) Unlink(o *Order) {
	p.unlink(o)
}

func (p *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next, o.prev = nil, nil

	p.TotalQty -= o.Open
	p.OrderCount--
}

// Reduce records qty traded out of a resting order on this level.
func (p *PriceLevel) Reduce(qty int64) { p.TotalQty -= qty }

func (p *PriceLevel) Empty() bool { return p.head == nil }

func (p *PriceLevel) Head() *Order { return p.head }

// Each visits resting orders in time priority.
func (p *PriceLevel) Each(fn func(*Order)) {
	for o := p.head; o != nil; o = o.next {
		fn(o)
	}
}
