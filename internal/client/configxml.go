package client

import (
	"github.com/simviz/sceneclient/internal/protocol"
)

// loadConfigXML requests the appearance config document. The server
// answers NoMessage when no document is configured, which is a valid
// empty response here, not an error.
func (s *Synchronizer) loadConfigXML() error {
	cur, mt, err := s.request(protocol.RequestConfigXML)
	if err != nil {
		return err
	}
	switch mt {
	case protocol.MessageNoMessage:
		return nil
	case protocol.MessageConfigXML:
	default:
		return protocol.Violationf(cur.Offset(), "expected ConfigXml, got %s", mt)
	}

	doc, err := cur.String()
	if err != nil {
		return err
	}
	if err := s.appearances.LoadXML([]byte(doc)); err != nil {
		return err
	}
	s.logger.Debug("appearance config loaded", "overrides", s.appearances.Len())
	return nil
}
