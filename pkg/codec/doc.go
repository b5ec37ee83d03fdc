// Package codec reads and writes workflow and layout documents.
//
// A workflow document is the interchange shape used by the editor front end:
//
//	{
//	  "meta": {},
//	  "steps": {
//	    "step1": {
//	      "component": {"type": "data"},
//	      "inputs": {"function": ["fast"]},
//	      "outputs": ["data"],
//	      "position": [20, 50]
//	    },
//	    "step2": {
//	      "component": {"type": "optimize"},
//	      "inputs": {"data": [{"step": "step1", "output": "data"}]},
//	      "position": [400, 50]
//	    }
//	  }
//	}
//
// Input entries are either a scalar constant or a connection object. The
// tagged form produced by domain JSON ({"type": "connection", "step_id": ...})
// is accepted as well. A layout document maps step ids to measured port
// positions:
//
//	{"step1": {"inputs": {"function": [20, 70]}, "outputs": {"data": [110, 70]}}}
//
// Layout positions may also be written as {"x": 110, "y": 70}, the shape
// the HTTP and MCP layout reports use.
//
// JSON and YAML are supported and chosen by file extension.
package codec
