package gen

// UtilsModule is the shared utility module emitted once per build. Every
// generated binding file imports it; it owns the wrapper/impl symbol pair
// and the runtime binding registry that cross-type references resolve
// through, so generated files never import each other directly.
const UtilsModule = `// Shared runtime support for generated bindings.

const implSymbol = Symbol("impl");
const wrapperSymbol = Symbol("wrapper");

const bindings = Object.create(null);
const dictionaries = Object.create(null);

exports.implSymbol = implSymbol;
exports.wrapperSymbol = wrapperSymbol;

exports.registerBinding = (name, wrapperClass, module, implModule) => {
  bindings[name] = { wrapperClass, module, implModule };
};

exports.registerDictionary = (name, module) => {
  dictionaries[name] = module;
};

exports.parentClass = name => {
  const binding = bindings[name];
  return binding ? binding.wrapperClass : class {};
};

exports.isWrapper = (name, value) => {
  const binding = bindings[name];
  return Boolean(binding) && value instanceof binding.wrapperClass;
};

exports.createWrapper = (wrapperClass, impl) => {
  const wrapper = Object.create(wrapperClass.prototype);
  wrapper[implSymbol] = impl;
  impl[wrapperSymbol] = wrapper;
  return wrapper;
};

exports.implForWrapper = (name, value) => {
  if (!exports.isWrapper(name, value)) {
    throw new TypeError("Expected a " + name);
  }
  return value[implSymbol];
};

exports.convertDictionary = (name, value) => {
  const module = dictionaries[name];
  if (!module) {
    throw new TypeError("Unknown dictionary " + name);
  }
  return module.convert(value);
};

exports.wrap = value => {
  if (value !== null && typeof value === "object" && value[wrapperSymbol]) {
    return value[wrapperSymbol];
  }
  return value;
};
`
