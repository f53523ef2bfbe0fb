// Package netump implements a NetUMP endpoint: a session-oriented UDP
// transport carrying MIDI 2.0 Universal MIDI Packets between exactly two
// peers, with an invitation handshake, liveness monitoring, and a replay
// based forward error correction scheme.
//
// Typical use:
//
//	opts := netump.NewOptions()
//	opts.EndpointName = "Example Synth"
//	opts.ProductInstanceID = "EX-0001"
//	ep, err := netump.New(opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ep.Close()
//
//	ep.SetCallback(func(words []uint32) {
//		// handle one received UMP message
//	})
//
//	if err := ep.InitiateSession("192.168.1.20:21928"); err != nil {
//		log.Fatal(err)
//	}
//
//	ticker := time.NewTicker(ep.IterationInterval())
//	for range ticker.C {
//		ep.Tick()
//	}
package netump
