package sim

import "sync"

// ArgsPool recycles argument tuples so a System can be driven from several
// goroutines without sharing a scratch buffer.
type ArgsPool struct {
	pool sync.Pool
	size int
}

func NewArgsPool(size int) *ArgsPool {
	return &ArgsPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float64, size)
				return &buf
			},
		},
	}
}

func (p *ArgsPool) Get() *[]float64 {
	return p.pool.Get().(*[]float64)
}

func (p *ArgsPool) Put(buf *[]float64) {
	if len(*buf) == p.size {
		p.pool.Put(buf)
	}
}
