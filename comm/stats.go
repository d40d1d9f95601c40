package comm

import "sync/atomic"

// ChannelStats is a snapshot of the traffic counters of one logical channel.
type ChannelStats struct {
	MsgsSent      uint64 `json:"msgs_sent"`
	BytesSent     uint64 `json:"bytes_sent"`
	MsgsReceived  uint64 `json:"msgs_received"`
	BytesReceived uint64 `json:"bytes_received"`
}

// Stats is a snapshot of the traffic counters of all four logical channels.
type Stats struct {
	Dispatch ChannelStats `json:"dispatch"`
	Forward  ChannelStats `json:"forward"`
	Notify   ChannelStats `json:"notify"`
	Free     ChannelStats `json:"free"`
}

type channelCounters struct {
	msgsSent      atomic.Uint64
	bytesSent     atomic.Uint64
	msgsReceived  atomic.Uint64
	bytesReceived atomic.Uint64
}

func (c *channelCounters) countSent(bytes int) {
	c.msgsSent.Add(1)
	c.bytesSent.Add(uint64(bytes))
}

func (c *channelCounters) countReceived(bytes int) {
	c.msgsReceived.Add(1)
	c.bytesReceived.Add(uint64(bytes))
}

func (c *channelCounters) snapshot() ChannelStats {
	return ChannelStats{
		MsgsSent:      c.msgsSent.Load(),
		BytesSent:     c.bytesSent.Load(),
		MsgsReceived:  c.msgsReceived.Load(),
		BytesReceived: c.bytesReceived.Load(),
	}
}
