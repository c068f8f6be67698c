/*
Package config turns the host-supplied operation document into an ordered
list of operation specs.

	            +-------------+
	            |   Params    |
	            | spec=[...]  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   JSON   | |   YAML   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+
	                   |
	           []operation.Spec

🎯 Purpose:
- Reads the required "spec" parameter from the host
- Parses the operation document in the requested format
- Keeps the declared operation order exactly as written

🔄 Flow:
1. FromParams looks up "spec" (missing -> ErrMissingConfiguration)
2. "spec_format" selects a registered Parser (json by default)
3. The parser normalizes every operation object to JSON
4. operation.Decode resolves each object by its "type" discriminator

⚡ Formats:

JSON, the host contract:

	[
	  {"type": "replace", "regex": "\\d{3}-\\d{2}-\\d{4}", "with": "***-**-****"}
	]

YAML:

	- type: replace
	  regex: '\d{3}-\d{2}-\d{4}'
	  with: '***-**-****'

HCL (a literal "${" must be written "$${" because of HCL interpolation):

	operation "replace" {
	  regex = "\\d{3}-\\d{2}-\\d{4}"
	  with  = "***-**-****"
	}

🔍 Example:

	specs, err := config.FromParams(ctx, config.Params{config.ParamSpec: raw})
	if errors.Is(err, config.ErrMissingConfiguration) {
		// the host never passed the parameter
	}
*/
package config
