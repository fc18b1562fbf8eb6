package tenancy

var WithIDGenerator = withIDGenerator
