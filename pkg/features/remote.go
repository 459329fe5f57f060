package features

import (
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// remoteTsSize is the big-endian tick of the remote node that precedes the value.
const remoteTsSize = 2

// RemoteNode identifies the node a relayed value comes from. For remote
// features the gateway sends the node id in place of the timestamp.
type RemoteNode struct {
	NodeID          model.Field[uint16]
	RemoteTimestamp model.Field[uint16]
}

func (r RemoteNode) fields() []model.AnyField { return []model.AnyField{r.NodeID, r.RemoteTimestamp} }

// readRemote checks that n value bytes follow the remote tick and reads
// the node identity.
func readRemote(ts uint64, data []byte, off, n int) (RemoteNode, error) {
	if err := numconv.Require(data, off, remoteTsSize+n); err != nil {
		return RemoteNode{}, err
	}
	remoteTs, _ := numconv.BigEndian.UInt16(data, off)
	return RemoteNode{
		NodeID:          model.NewField("remoteNodeId", "", uint16(ts%(1<<16))),
		RemoteTimestamp: model.NewField("remoteTimestamp", "", remoteTs),
	}, nil
}

// RemoteTemperatureData is a temperature relayed from a remote node.
type RemoteTemperatureData struct {
	RemoteNode
	Temperature model.Field[float32]
}

func (d RemoteTemperatureData) Fields() []model.AnyField {
	return append(d.fields(), d.Temperature)
}

func extractRemoteTemperature(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	node, err := readRemote(ts, data, off, 2)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	v, _ := numconv.LittleEndian.Int16(data, off+remoteTsSize)
	d := RemoteTemperatureData{
		RemoteNode:  node,
		Temperature: model.NewField("remoteTemperature", "℃", float32(v)/10).WithRange(-40, 120),
	}
	return newUpdate(f, ts, data, off, remoteTsSize+2, d), nil
}

// RemoteHumidityData is a relative humidity relayed from a remote node.
type RemoteHumidityData struct {
	RemoteNode
	Humidity model.Field[float32]
}

func (d RemoteHumidityData) Fields() []model.AnyField {
	return append(d.fields(), d.Humidity)
}

func extractRemoteHumidity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	node, err := readRemote(ts, data, off, 2)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	v, _ := numconv.LittleEndian.UInt16(data, off+remoteTsSize)
	d := RemoteHumidityData{
		RemoteNode: node,
		Humidity:   model.NewField("remoteHumidity", "%", float32(v)/10).WithRange(0, 100),
	}
	return newUpdate(f, ts, data, off, remoteTsSize+2, d), nil
}

// RemotePressureData is a pressure relayed from a remote node.
type RemotePressureData struct {
	RemoteNode
	Pressure model.Field[float32]
}

func (d RemotePressureData) Fields() []model.AnyField {
	return append(d.fields(), d.Pressure)
}

func extractRemotePressure(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	node, err := readRemote(ts, data, off, 4)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	v, _ := numconv.LittleEndian.Int32(data, off+remoteTsSize)
	d := RemotePressureData{
		RemoteNode: node,
		Pressure:   model.NewField("remotePressure", "mBar", float32(v)/100).WithRange(0, 2000),
	}
	return newUpdate(f, ts, data, off, remoteTsSize+4, d), nil
}

// RemoteSwitchData is a switch state relayed from a remote node.
type RemoteSwitchData struct {
	RemoteNode
	Status model.Field[uint8]
}

func (d RemoteSwitchData) Fields() []model.AnyField {
	return append(d.fields(), d.Status)
}

func extractRemoteSwitch(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	node, err := readRemote(ts, data, off, 1)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := RemoteSwitchData{
		RemoteNode: node,
		Status:     model.NewField("remoteSwitchStatus", "", data[off+remoteTsSize]).WithRange(0, 0xFF),
	}
	return newUpdate(f, ts, data, off, remoteTsSize+1, d), nil
}

func packRemoteSwitch(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(ChangeRemoteSwitch)
	if !ok {
		return nil, false
	}
	return f.request(boolByte(c.On), numconv.BigEndian.PutUInt16(c.NodeID)...), true
}
