package app

import (
	"github.com/specialistvlad/radgo/internal/retrieval"
	"github.com/specialistvlad/radgo/internal/settings"
	"github.com/specialistvlad/radgo/internal/transport"
)

// newTransports builds the fetcher of every source kind the node supports.
func newTransports(s *settings.Settings) (retrieval.Transports, func(), error) {
	limit, err := s.BodyLimit()
	if err != nil {
		return nil, nil, err
	}
	httpT := transport.NewHTTP(transport.HTTPConfig{
		UserAgents:  s.UserAgents,
		MaxBodySize: limit,
	})
	t := retrieval.Transports{
		retrieval.KindHTTPGet:   httpT,
		retrieval.KindHTTPPost:  httpT,
		retrieval.KindHTTPHead:  httpT,
		retrieval.KindWebSocket: transport.NewWebSocket(),
		retrieval.KindSocketIO:  transport.NewSocketIO(),
		retrieval.KindRNG:       transport.RNG{},
	}
	return t, httpT.Close, nil
}
