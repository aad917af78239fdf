package launcher

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	benorerrors "boscoin.io/benor/lib/errors"
)

// NetworkConfig is the layout of a network launched in one process.
//
//	n: 4
//	f: 1
//	base_port: 3000
//	initial_values: [0, 0, 0, 1]
//	faulty: [false, false, false, true]
//	round_interval: 50ms
type NetworkConfig struct {
	N             int           `yaml:"n" json:"n"`
	F             int           `yaml:"f" json:"f"`
	BasePort      int           `yaml:"base_port" json:"base_port"`
	InitialValues []int         `yaml:"initial_values" json:"initial_values"`
	Faulty        []bool        `yaml:"faulty" json:"faulty"`
	Seed          int64         `yaml:"seed" json:"seed"`
	RoundInterval time.Duration `yaml:"round_interval" json:"round_interval"`

	Scheme  string `yaml:"scheme" json:"scheme"`
	Host    string `yaml:"host" json:"host"`
	Storage string `yaml:"storage" json:"storage"`
}

func NewNetworkConfigFromYAML(b []byte) (nc NetworkConfig, err error) {
	if err = yaml.UnmarshalStrict(b, &nc); err != nil {
		err = errors.Wrap(err, "failed to parse network config")
		return
	}

	err = nc.Validate()

	return
}

func LoadNetworkConfig(path string) (nc NetworkConfig, err error) {
	var b []byte
	if b, err = ioutil.ReadFile(path); err != nil {
		err = errors.Wrapf(err, "failed to read network config, %q", path)
		return
	}

	return NewNetworkConfigFromYAML(b)
}

// Validate checks the sizes of the lists; an empty faulty list means no
// faulty node.
func (nc NetworkConfig) Validate() error {
	if _, err := consensus.NewThresholdPolicy(nc.N, nc.F); err != nil {
		return err
	}

	if len(nc.InitialValues) != nc.N {
		return benorerrors.InvalidInitialValues.Clone().
			SetData("n", nc.N).
			SetData("initial_values", len(nc.InitialValues))
	}
	for i, v := range nc.InitialValues {
		if _, err := consensus.NewValue(v); err != nil {
			return benorerrors.InvalidInitialValues.Clone().SetData("node", i).SetData("value", v)
		}
	}

	if len(nc.Faulty) > 0 && len(nc.Faulty) != nc.N {
		return benorerrors.InvalidFaultyNodes.Clone().
			SetData("n", nc.N).
			SetData("faulty", len(nc.Faulty))
	}

	if nc.RoundInterval < 0 {
		return benorerrors.BadRequestParameter.Clone().SetData("round_interval", nc.RoundInterval.String())
	}

	return nil
}

func (nc NetworkConfig) IsFaulty(id int) bool {
	return id < len(nc.Faulty) && nc.Faulty[id]
}

func (nc NetworkConfig) FaultyCount() (count int) {
	for _, faulty := range nc.Faulty {
		if faulty {
			count++
		}
	}

	return
}

func (nc NetworkConfig) InitialValue(id int) consensus.Value {
	return consensus.MustNewValue(nc.InitialValues[id])
}

// Config fills the node config; the fields left empty keep the defaults of
// `base`.
func (nc NetworkConfig) Config(base common.Config) common.Config {
	conf := base
	conf.Nodes = nc.N
	conf.Faults = nc.F

	if nc.BasePort > 0 {
		conf.BasePort = nc.BasePort
	}
	if nc.Seed != 0 {
		conf.Seed = nc.Seed
	}
	if nc.RoundInterval > 0 {
		conf.RoundInterval = nc.RoundInterval
	}
	if len(nc.Scheme) > 0 {
		conf.Scheme = nc.Scheme
	}
	if len(nc.Host) > 0 {
		conf.Host = nc.Host
	}
	if len(nc.Storage) > 0 {
		conf.Storage = nc.Storage
	}

	return conf
}
