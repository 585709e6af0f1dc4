package config

import (
	"net"
	"strconv"
	"time"
)

type (
	Headers struct {
		// MaxNumber is the maximal number of headers a request may carry.
		MaxNumber int `yaml:"max_number"`
		// MaxSpace limits the memory occupied by the request line and headers together.
		MaxSpace Size `yaml:"max_space"`
		// InitialSpace is the pre-allocated part of MaxSpace.
		InitialSpace Size `yaml:"initial_space"`
		// Default headers are included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string `yaml:"default" test:"nullable"`
	}

	URI struct {
		// MaxLength limits the request target, query included.
		MaxLength Size `yaml:"max_length"`
	}

	BodyForm struct {
		// StrictMultipart makes a malformed multipart part fail the whole body with 400
		// instead of being skipped.
		StrictMultipart bool `yaml:"strict_multipart" test:"nullable"`
	}

	Body struct {
		// BufferThreshold is the biggest Content-Length which is read eagerly during the
		// request decoding. Bigger bodies are exposed as a one-shot stream.
		BufferThreshold Size `yaml:"buffer_threshold"`
		// MaxSize is the biggest Content-Length accepted at all. Bigger requests are
		// answered with 413.
		MaxSize Size `yaml:"max_size"`

		Form BodyForm `yaml:"form"`
	}

	NET struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		// MaxConnections bounds connections being handled simultaneously. Connections
		// accepted beyond it wait for a free slot.
		MaxConnections int64 `yaml:"max_connections"`
		// ReadBufferSize is the size of the per-connection buffer to read the socket into.
		ReadBufferSize Size `yaml:"read_buffer_size"`
		// ReadTimeout is the longest time a read from a client may block. A client stuck
		// longer is disconnected and its slot is freed.
		ReadTimeout time.Duration `yaml:"read_timeout"`
		// WriteTimeout is the same as ReadTimeout, but for writing responses.
		WriteTimeout time.Duration `yaml:"write_timeout"`
		// AcceptLoopInterruptPeriod controls how often the Accept() call is interrupted to
		// check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration `yaml:"accept_loop_interrupt_period"`
		// CompressionThreshold is the response body length that must be exceeded for the
		// body to be compressed, if the client accepts it.
		CompressionThreshold Size `yaml:"compression_threshold"`
		// KeepAlive enables serving more than one request per connection. Disabled, every
		// connection is closed right after the first response.
		KeepAlive bool `yaml:"keep_alive" test:"nullable"`
	}

	Router struct {
		// CacheSize bounds the number of memoized route lookups. Reaching it drops the
		// whole cache.
		CacheSize int `yaml:"cache_size"`
	}
)

// Config holds settings used across the server: addresses, limitations and pre-allocations.
//
// Always start from Default() (or Load) and modify the result. A manually initialized
// config most likely has zero limits, resulting in every request rejected.
type Config struct {
	NET     NET     `yaml:"net"`
	URI     URI     `yaml:"uri"`
	Headers Headers `yaml:"headers"`
	Body    Body    `yaml:"body"`
	Router  Router  `yaml:"router"`
}

// Addr returns the address to bind to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.NET.Host, strconv.Itoa(c.NET.Port))
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			Host:                      "127.0.0.1",
			Port:                      5002,
			MaxConnections:            1000,
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               30 * time.Second,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			CompressionThreshold:      1024,
		},
		URI: URI{
			MaxLength: 8 * 1024,
		},
		Headers: Headers{
			MaxNumber:    100,
			InitialSpace: 1024,
			MaxSpace:     64 * 1024,
			Default:      make(map[string]string),
		},
		Body: Body{
			BufferThreshold: 16 * 1024,
			MaxSize:         512 * 1024 * 1024,
		},
		Router: Router{
			CacheSize: 10_000,
		},
	}
}
