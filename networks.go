// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lazymint

import (
	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/voucher"
)

// Network definitions
var (
	NetworkMainnet = Network{
		Name:         "mainnet",
		NetworkMagic: 1,
	}
	NetworkTestnet = Network{
		Name:         "testnet",
		NetworkMagic: 2,
	}
	NetworkDevnet = Network{
		Name:         "devnet",
		NetworkMagic: 42,
	}

	NetworkInvalid = Network{
		Name:         "invalid",
		NetworkMagic: 0,
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkTestnet,
	NetworkDevnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByNetworkMagic returns a predefined network by network magic
func NetworkByNetworkMagic(networkMagic uint32) Network {
	for _, network := range networks {
		if network.NetworkMagic == networkMagic {
			return network
		}
	}
	return NetworkInvalid
}

// Network identifies a deployment. Its network magic is part of every voucher domain,
// so vouchers signed for one network are never valid on another
type Network struct {
	Name         string
	NetworkMagic uint32
}

func (n Network) String() string {
	return n.Name
}

// Domain returns the default voucher domain for the ledger instance at the given address
// on this network
func (n Network) Domain(ledger common.Address) voucher.Domain {
	return voucher.NewDomain(n.NetworkMagic, ledger)
}
