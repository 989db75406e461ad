package catalog

// knownKinds is the full registry. API versions are pinned per kind; bump
// them here, not in the fetch path.
func knownKinds() map[string]Descriptor {
	kinds := []Descriptor{
		{
			Kind:          "akscluster",
			Path:          "providers/Microsoft.ContainerService/managedClusters?api-version=2021-07-01",
			TypeTag:       "Compute::AksCluster",
			StoragePrefix: "aks/managedclusters",
		},
		{
			Kind:          "applicationgateway",
			Path:          "providers/Microsoft.Network/applicationGateways?api-version=2021-03-01",
			TypeTag:       "Network::ApplicationGateway",
			StoragePrefix: "network/applicationgateway",
		},
		{
			Kind:          "bastion",
			Path:          "providers/Microsoft.Network/bastionHosts?api-version=2021-03-01",
			TypeTag:       "Network::Bastion",
			StoragePrefix: "network/bastion",
		},
		{
			Kind:          "containerregistry",
			Path:          "providers/Microsoft.ContainerRegistry/registries?api-version=2021-06-01-preview",
			TypeTag:       "ACR::ContainerRegistry",
			StoragePrefix: "acr/containerregistry",
		},
		{
			Kind:          "functionapp",
			Path:          "providers/Microsoft.Web/sites?api-version=2020-09-01",
			TypeTag:       "FunctionApp",
			StoragePrefix: "functions/app",
		},
		{
			Kind:          "hdinsight",
			Path:          "providers/Microsoft.HDInsight/clusters?api-version=2021-06-01",
			TypeTag:       "HDInsight",
			StoragePrefix: "hdinsight/cluster",
		},
		{
			Kind:          "keyvault",
			Path:          "resources?$filter=resourceType%20eq%20%27Microsoft.KeyVault%2Fvaults%27&api-version=2015-11-01",
			TypeTag:       "KeyVault",
			StoragePrefix: "keyvault",
		},
		{
			Kind:          "networkinterface",
			Path:          "providers/Microsoft.Network/networkInterfaces?api-version=2021-03-01",
			TypeTag:       "Network::Nic",
			StoragePrefix: "network/nic",
		},
		{
			Kind:          "nsg",
			Path:          "providers/Microsoft.Network/networkSecurityGroups?api-version=2021-03-01",
			TypeTag:       "NetworkSecurityGroup",
			StoragePrefix: "network/nsg",
		},
		{
			Kind:          "publicipaddresses",
			Path:          "providers/Microsoft.Network/publicIPAddresses?api-version=2021-03-01",
			TypeTag:       "Network::PublicIp",
			StoragePrefix: "network/publicip",
		},
		{
			Kind:          "rediscache",
			Path:          "providers/Microsoft.Cache/redis?api-version=2020-12-01",
			TypeTag:       "RedisCache",
			StoragePrefix: "redis/cluster",
		},
		{
			Kind:          "sqldb",
			Path:          "resourceGroups/_resource_group_/providers/Microsoft.Sql/servers/_server_name_/databases?api-version=2021-02-01-preview",
			TypeTag:       "SQLDB",
			StoragePrefix: "sql/db",
		},
		{
			Kind:          "sqlserver",
			Path:          "providers/Microsoft.Sql/servers?api-version=2021-02-01-preview",
			TypeTag:       "SQLServer",
			StoragePrefix: "sql/server",
		},
		{
			Kind:          "storageaccount",
			Path:          "providers/Microsoft.Storage/storageAccounts?api-version=2021-06-01",
			TypeTag:       "Storage::StorageAccount",
			StoragePrefix: "storage/account",
		},
		{
			Kind:          "vminstance",
			Path:          "providers/Microsoft.Compute/virtualMachines?api-version=2021-07-01",
			TypeTag:       "VM::VirtualMachine",
			StoragePrefix: "vm/instance",
		},
		{
			Kind:          "vmscaleset",
			Path:          "providers/Microsoft.Compute/virtualMachineScaleSets?api-version=2021-07-01",
			TypeTag:       "VM::VMSSInstance",
			StoragePrefix: "vm/scaleset",
		},
		{
			Kind:          "vnet",
			Path:          "providers/Microsoft.Network/virtualNetworks?api-version=2021-03-01",
			TypeTag:       "Network::VNet",
			StoragePrefix: "network/vnet",
		},
	}

	out := make(map[string]Descriptor, len(kinds))
	for _, d := range kinds {
		out[d.Kind] = d
	}
	return out
}
