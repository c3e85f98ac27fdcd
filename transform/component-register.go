package transform

import (
	"fmt"
	"sort"

	"github.com/relloyd/sparkpipe/constants"
)

var componentFuncs = map[string]TaskBuilderFunc{
	constants.TaskTypeNoOp:             buildNoOp,
	constants.TaskTypeSqlExec:          buildSqlExec,
	constants.TaskTypeStageToWarehouse: buildStageToWarehouse,
	constants.TaskTypeLoadFact:         buildLoadFact,
	constants.TaskTypeLoadDimension:    buildLoadDimension,
	constants.TaskTypeDataQuality:      buildDataQuality,
}

// GetTaskTypes returns the sorted names of the registered task types.
func GetTaskTypes() []string {
	names := make([]string, 0, len(componentFuncs))
	for k := range componentFuncs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func getTaskBuilder(taskType string) (TaskBuilderFunc, error) {
	f, ok := componentFuncs[taskType]
	if !ok {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}
	return f, nil
}
