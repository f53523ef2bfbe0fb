// Command netump-echo is a minimal NetUMP endpoint that echoes every UMP
// message it receives back to the session partner. Run one instance with
// -peer pointing at another instance with none (or a different -listen),
// and it accepts the invitation and prints/echoes traffic.
package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kissbox/netump"
)

func main() {
	listenAddr := flag.String("listen", ":21928", "local UDP address to bind")
	peerAddr := flag.String("peer", "", "peer address to invite, e.g. 192.168.1.20:21928; leave empty to wait for an invitation")
	name := flag.String("name", "netump-echo", "endpoint name advertised to the peer")
	piid := flag.String("piid", "netump-echo-0001", "product instance ID advertised to the peer")
	flag.Parse()

	opts := netump.NewOptions()
	opts.EndpointName = *name
	opts.ProductInstanceID = *piid
	opts.ListenAddress = *listenAddr

	ep, err := netump.New(opts)
	if err != nil {
		logrus.WithField("error", err).Fatal("failed to construct endpoint")
	}
	defer ep.Close()

	ep.SetConnectionCallback(func() {
		logrus.Info("session opened")
	})
	ep.SetDisconnectCallback(func() {
		logrus.Info("session closed")
	})
	ep.SetCallback(func(words []uint32) {
		logrus.WithField("words", words).Info("received UMP message")
		if err := ep.SendUMP(words); err != nil {
			logrus.WithField("error", err).Warn("failed to echo UMP message")
		}
	})

	if *peerAddr != "" {
		if _, err := net.ResolveUDPAddr("udp", *peerAddr); err != nil {
			logrus.WithField("error", err).Fatal("invalid -peer address")
		}
		if err := ep.InitiateSession(*peerAddr); err != nil {
			logrus.WithField("error", err).Fatal("failed to initiate session")
		}
	} else {
		logrus.WithField("address", ep.LocalAddr().String()).Info("waiting for an invitation")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(ep.IterationInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ep.Tick()
			if ep.ReadAndResetConnectionLost() {
				logrus.Warn("partner liveness timeout")
			}
			if ep.ReadAndResetPeerClosedSession() {
				logrus.Info("partner closed the session")
			}
		case <-stop:
			logrus.Info("shutting down")
			return
		}
	}
}
