package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/sirupsen/logrus"
)

const (
	taskProtocol    = protocol.ID("/funhpc/dispatch/1.0.0")
	barrierTopicFmt = "/funhpc/barrier/%d"
)

// LibP2PTransport is the real, cross-OS-process Transport: each
// point-to-point frame rides its own newly opened libp2p stream (CORE
// §4.5's wire path), and Barrier rides a per-epoch pubsub topic used purely as a
// counting rendezvous. Adapted from core/network.go's host/pubsub setup
// and core/peer_management.go's SendAsync/Subscribe, generalized from
// that code's peer-discovery vocabulary to a fixed-size rank topology: a
// funhpc job's process count is known up front (FUNHPC_NUM_PROCS), so
// ranks are dialed once at construction rather than discovered via mDNS.
type LibP2PTransport struct {
	rank int
	size int

	host host.Host
	ps   *pubsub.PubSub
	ctx  context.Context

	peers  []peer.ID // peers[i] is rank i's peer ID; peers[rank] is this process
	rankOf map[peer.ID]int

	// addrCache holds each rank's last-known-good multiaddr, bounded to
	// one entry per rank in the job. Send consults it to redial a peer
	// whose initial Connect at construction failed or whose stream later
	// drops, instead of re-parsing the full ranks table on every retry.
	addrCache *lru.Cache[int, string]

	inbox chan frame
	log   *logrus.Entry
}

// NewLibP2PTransport starts a libp2p host listening on listenAddr,
// connects to every peer address in ranks (ranks[rank] must be this
// process's own multiaddr, used only to recover its peer ID), and
// returns a Transport usable once every process has done the same.
func NewLibP2PTransport(ctx context.Context, rank int, ranks []string) (*LibP2PTransport, error) {
	listenAddr := ranks[rank]
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("dispatch: create libp2p host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("dispatch: create pubsub: %w", err)
	}

	cache, err := lru.New[int, string](len(ranks))
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("dispatch: create address cache: %w", err)
	}

	t := &LibP2PTransport{
		rank:      rank,
		size:      len(ranks),
		host:      h,
		ps:        ps,
		ctx:       ctx,
		peers:     make([]peer.ID, len(ranks)),
		rankOf:    make(map[peer.ID]int, len(ranks)),
		addrCache: cache,
		inbox:     make(chan frame, 256),
		log:       logrus.WithField("rank", rank),
	}
	t.peers[rank] = h.ID()
	t.rankOf[h.ID()] = rank
	t.addrCache.Add(rank, listenAddr)

	h.SetStreamHandler(taskProtocol, t.handleStream)

	for i, addr := range ranks {
		if i == rank {
			continue
		}
		info, err := peer.AddrInfoFromString(addr)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("dispatch: parse rank %d addr %q: %w", i, addr, err)
		}
		h.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.PermanentAddrTTL)
		if err := h.Connect(ctx, *info); err != nil {
			t.log.Warnf("dispatch: connect to rank %d (%s) failed, will retry lazily: %v", i, addr, err)
		}
		t.peers[i] = info.ID
		t.rankOf[info.ID] = i
		t.addrCache.Add(i, addr)
	}
	return t, nil
}

func (t *LibP2PTransport) Rank() int { return t.rank }
func (t *LibP2PTransport) Size() int { return t.size }

// handleStream reads one tag byte followed by the rest of the stream as
// the frame payload, mirroring core/peer_management.go's SendAsync wire
// shape (a one-byte code prefix) on the receive side.
func (t *LibP2PTransport) handleStream(s network.Stream) {
	defer s.Close()
	r := bufio.NewReader(s)
	tag, err := r.ReadByte()
	if err != nil {
		return
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}
	src, ok := t.rankOf[s.Conn().RemotePeer()]
	if !ok {
		t.log.WithField("peer", s.Conn().RemotePeer().String()).Warn("dispatch: frame from unrecognized peer")
		return
	}
	t.inbox <- frame{src: src, tag: tag, data: data}
}

// Send opens a stream to dest and writes one tag-prefixed frame. If the
// initial attempt fails -- typically because the lazy Connect at
// construction never succeeded -- it redials once using the rank's
// cached multiaddr before giving up.
func (t *LibP2PTransport) Send(dest int, tag byte, data []byte) error {
	ctx, cancel := context.WithTimeout(t.ctx, 5*time.Second)
	defer cancel()
	s, err := t.host.NewStream(ctx, t.peers[dest], taskProtocol)
	if err != nil {
		addr, ok := t.addrCache.Get(dest)
		if !ok {
			return fmt.Errorf("dispatch: open stream to rank %d: %w", dest, err)
		}
		info, perr := peer.AddrInfoFromString(addr)
		if perr != nil {
			return fmt.Errorf("dispatch: open stream to rank %d: %w", dest, err)
		}
		if cerr := t.host.Connect(ctx, *info); cerr != nil {
			return fmt.Errorf("dispatch: redial rank %d (%s): %w", dest, addr, cerr)
		}
		t.log.Infof("dispatch: redialed rank %d (%s) before send", dest, addr)
		s, err = t.host.NewStream(ctx, t.peers[dest], taskProtocol)
		if err != nil {
			return fmt.Errorf("dispatch: open stream to rank %d after redial: %w", dest, err)
		}
	}
	defer s.Close()
	w := bufio.NewWriter(s)
	if _, err := w.Write([]byte{tag}); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

func (t *LibP2PTransport) Recv(ctx context.Context) (int, byte, []byte, bool) {
	select {
	case f, ok := <-t.inbox:
		if !ok {
			return 0, 0, nil, false
		}
		return f.src, f.tag, f.data, true
	case <-ctx.Done():
		return 0, 0, nil, false
	}
}

// Barrier joins the pubsub topic for this epoch, publishes an arrival,
// and waits until it has observed t.size distinct arrivals (including
// its own), per CORE §4.5's collective rendezvous. Each epoch gets its
// own topic so a late arrival from a stale round can never be mistaken
// for the current one.
func (t *LibP2PTransport) Barrier(ctx context.Context, epoch int) error {
	topicName := fmt.Sprintf(barrierTopicFmt, epoch)
	topic, err := t.ps.Join(topicName)
	if err != nil {
		return fmt.Errorf("dispatch: join barrier topic: %w", err)
	}
	defer topic.Close()

	sub, err := topic.Subscribe()
	if err != nil {
		return fmt.Errorf("dispatch: subscribe barrier topic: %w", err)
	}
	defer sub.Cancel()

	if err := topic.Publish(ctx, []byte{byte(t.rank)}); err != nil {
		return fmt.Errorf("dispatch: publish barrier arrival: %w", err)
	}

	seen := make(map[int]bool, t.size)
	for len(seen) < t.size {
		msg, err := sub.Next(ctx)
		if err != nil {
			return fmt.Errorf("dispatch: barrier wait: %w", err)
		}
		if len(msg.Data) == 1 {
			seen[int(msg.Data[0])] = true
		}
	}
	return nil
}

func (t *LibP2PTransport) Close() error {
	close(t.inbox)
	return t.host.Close()
}
