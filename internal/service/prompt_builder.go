package service

import (
	"fmt"
	"strings"
)

type TableSchema struct {
	Name    string
	Columns []string
}

// Tables is the fixed schema the model is told about. It is never read from a
// live cluster.
var Tables = []TableSchema{
	{
		Name: "Event",
		Columns: []string{
			"TenantId", "SourceSystem", "TimeGenerated [UTC]", "Source", "EventLog", "Computer",
			"EventLevel", "EventLevelName", "ParameterXml", "EventData", "EventID",
			"RenderedDescription", "AzureDeploymentID", "Role", "EventCategory", "UserName",
			"Message", "MG", "ManagementGroupName", "Type", "_ResourceId",
		},
	},
	{
		Name: "Heartbeat",
		Columns: []string{
			"TenantId", "SourceSystem", "TimeGenerated [UTC]", "MG", "ManagementGroupName",
			"SourceComputerId", "ComputerIP", "Computer", "Category", "OSType", "OSName",
			"OSMajorVersion", "OSMinorVersion", "Version", "SCAgentChannel", "IsGatewayInstalled",
			"RemoteIPLongitude", "RemoteIPLatitude", "RemoteIPCountry", "SubscriptionId",
			"ResourceGroup", "ResourceProvider", "Resource", "ResourceId", "ResourceType",
			"ComputerEnvironment", "Solutions", "VMUUID", "ComputerPrivateIPs", "Type", "_ResourceId",
		},
	},
	{
		Name: "Perf",
		Columns: []string{
			"TenantId", "Computer", "ObjectName", "CounterName", "InstanceName", "Min", "Max",
			"SampleCount", "CounterValue", "TimeGenerated [UTC]", "BucketStartTime [UTC]",
			"BucketEndTime [UTC]", "SourceSystem", "CounterPath", "StandardDeviation", "MG",
			"Type", "_ResourceId",
		},
	},
}

// SchemaDescription is the prose form of Tables embedded in every prompt.
var SchemaDescription = describeSchema(Tables)

var ordinals = []string{"First", "Second", "Third", "Fourth", "Fifth"}

func describeSchema(tables []TableSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "There are %s table with following columns\n", countWord(len(tables)))
	for i, t := range tables {
		ordinal := fmt.Sprintf("Table %d", i+1)
		if i < len(ordinals) {
			ordinal = ordinals[i]
		}
		fmt.Fprintf(&b, "%s table name is %s with columns %s.\n", ordinal, t.Name, strings.Join(t.Columns, ","))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func countWord(n int) string {
	words := []string{"zero", "one", "two", "three", "four", "five"}
	if n < len(words) {
		return words[n]
	}
	return fmt.Sprint(n)
}

// BuildPrompt returns the user message for the completion call. The question
// is embedded verbatim.
func BuildPrompt(question string) (string, error) {
	if question == "" {
		return "", &InputError{Err: ErrEmptyQuestion}
	}
	return fmt.Sprintf(userPromptTemplate, question, SchemaDescription), nil
}
