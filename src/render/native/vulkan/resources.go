package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

func (d *Driver) device(h native.Handle) vk.Device {
	return lookup[vk.Device](&d.objects, h)
}

func requirements(req vk.MemoryRequirements) native.MemoryRequirements {
	req.Deref()
	return native.MemoryRequirements{
		Size:           uint64(req.Size),
		Alignment:      uint64(req.Alignment),
		MemoryTypeBits: req.MemoryTypeBits,
	}
}

func (d *Driver) CreateBuffer(device native.Handle, info *native.BufferCreateInfo) (native.Handle, native.Result) {
	ci := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		Flags:                 vk.BufferCreateFlags(info.Flags),
		Size:                  vk.DeviceSize(info.Size),
		Usage:                 vk.BufferUsageFlags(info.Usage),
		SharingMode:           vk.SharingMode(info.SharingMode),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilyIndices)),
		PQueueFamilyIndices:   info.QueueFamilyIndices,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(d.device(device), &ci, nil, &buffer); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(buffer), native.Success
}

func (d *Driver) GetBufferMemoryRequirements(device, buffer native.Handle) native.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device(device), lookup[vk.Buffer](&d.objects, buffer), &req)
	return requirements(req)
}

func (d *Driver) BindBufferMemory(device, buffer, memory native.Handle, offset uint64) native.Result {
	return result(vk.BindBufferMemory(d.device(device),
		lookup[vk.Buffer](&d.objects, buffer),
		lookup[*allocation](&d.objects, memory).memory,
		vk.DeviceSize(offset)))
}

func (d *Driver) DestroyBuffer(device, buffer native.Handle) {
	vk.DestroyBuffer(d.device(device), take[vk.Buffer](&d.objects, buffer), nil)
}

func (d *Driver) CreateBufferView(device native.Handle, info *native.BufferViewCreateInfo) (native.Handle, native.Result) {
	ci := vk.BufferViewCreateInfo{
		SType:  vk.StructureTypeBufferViewCreateInfo,
		Buffer: lookup[vk.Buffer](&d.objects, info.Buffer),
		Format: vk.Format(info.Format),
		Offset: vk.DeviceSize(info.Offset),
		Range:  vk.DeviceSize(info.Range),
	}
	var view vk.BufferView
	if res := vk.CreateBufferView(d.device(device), &ci, nil, &view); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(view), native.Success
}

func (d *Driver) DestroyBufferView(device, view native.Handle) {
	vk.DestroyBufferView(d.device(device), take[vk.BufferView](&d.objects, view), nil)
}

func (d *Driver) CreateImage(device native.Handle, info *native.ImageCreateInfo) (native.Handle, native.Result) {
	ci := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     vk.ImageCreateFlags(info.Flags),
		ImageType: vk.ImageType(info.ImageType),
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  info.Extent.Depth,
		},
		MipLevels:             info.MipLevels,
		ArrayLayers:           info.ArrayLayers,
		Samples:               vk.SampleCountFlagBits(info.Samples),
		Tiling:                vk.ImageTiling(info.Tiling),
		Usage:                 vk.ImageUsageFlags(info.Usage),
		SharingMode:           vk.SharingMode(info.SharingMode),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilyIndices)),
		PQueueFamilyIndices:   info.QueueFamilyIndices,
		InitialLayout:         vk.ImageLayout(info.InitialLayout),
	}
	var image vk.Image
	if res := vk.CreateImage(d.device(device), &ci, nil, &image); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(image), native.Success
}

func (d *Driver) GetImageMemoryRequirements(device, image native.Handle) native.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device(device), lookup[vk.Image](&d.objects, image), &req)
	return requirements(req)
}

func (d *Driver) BindImageMemory(device, image, memory native.Handle, offset uint64) native.Result {
	return result(vk.BindImageMemory(d.device(device),
		lookup[vk.Image](&d.objects, image),
		lookup[*allocation](&d.objects, memory).memory,
		vk.DeviceSize(offset)))
}

func (d *Driver) DestroyImage(device, image native.Handle) {
	vk.DestroyImage(d.device(device), take[vk.Image](&d.objects, image), nil)
}

func (d *Driver) CreateImageView(device native.Handle, info *native.ImageViewCreateInfo) (native.Handle, native.Result) {
	r := info.SubresourceRange
	ci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Flags:    vk.ImageViewCreateFlags(info.Flags),
		Image:    lookup[vk.Image](&d.objects, info.Image),
		ViewType: vk.ImageViewType(info.ViewType),
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzle(info.Components.R),
			G: vk.ComponentSwizzle(info.Components.G),
			B: vk.ComponentSwizzle(info.Components.B),
			A: vk.ComponentSwizzle(info.Components.A),
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(r.AspectMask),
			BaseMipLevel:   r.BaseMipLevel,
			LevelCount:     r.LevelCount,
			BaseArrayLayer: r.BaseArrayLayer,
			LayerCount:     r.LayerCount,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(d.device(device), &ci, nil, &view); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(view), native.Success
}

func (d *Driver) DestroyImageView(device, view native.Handle) {
	vk.DestroyImageView(d.device(device), take[vk.ImageView](&d.objects, view), nil)
}

func (d *Driver) CreateSampler(device native.Handle, info *native.SamplerCreateInfo) (native.Handle, native.Result) {
	ci := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.Filter(info.MagFilter),
		MinFilter:               vk.Filter(info.MinFilter),
		MipmapMode:              vk.SamplerMipmapMode(info.MipmapMode),
		AddressModeU:            vk.SamplerAddressMode(info.AddressModeU),
		AddressModeV:            vk.SamplerAddressMode(info.AddressModeV),
		AddressModeW:            vk.SamplerAddressMode(info.AddressModeW),
		MipLodBias:              info.MipLodBias,
		AnisotropyEnable:        boolean(info.AnisotropyEnable),
		MaxAnisotropy:           info.MaxAnisotropy,
		CompareEnable:           boolean(info.CompareEnable),
		CompareOp:               vk.CompareOp(info.CompareOp),
		MinLod:                  info.MinLod,
		MaxLod:                  info.MaxLod,
		BorderColor:             vk.BorderColor(info.BorderColor),
		UnnormalizedCoordinates: boolean(info.UnnormalizedCoordinates),
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(d.device(device), &ci, nil, &sampler); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(sampler), native.Success
}

func (d *Driver) DestroySampler(device, sampler native.Handle) {
	vk.DestroySampler(d.device(device), take[vk.Sampler](&d.objects, sampler), nil)
}

func (d *Driver) CreateShaderModule(device native.Handle, info *native.ShaderModuleCreateInfo) (native.Handle, native.Result) {
	ci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(info.Code) * 4),
		PCode:    info.Code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(d.device(device), &ci, nil, &module); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(module), native.Success
}

func (d *Driver) DestroyShaderModule(device, module native.Handle) {
	vk.DestroyShaderModule(d.device(device), take[vk.ShaderModule](&d.objects, module), nil)
}

func (d *Driver) CreateDescriptorSetLayout(device native.Handle, info *native.DescriptorSetLayoutCreateInfo) (native.Handle, native.Result) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(info.Bindings))
	for i, b := range info.Bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.DescriptorType),
			DescriptorCount: b.DescriptorCount,
			StageFlags:      vk.ShaderStageFlags(b.StageFlags),
		}
		if len(b.ImmutableSamplers) > 0 {
			bindings[i].PImmutableSamplers = lookupAll[vk.Sampler](&d.objects, b.ImmutableSamplers)
		}
	}
	ci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		Flags:        vk.DescriptorSetLayoutCreateFlags(info.Flags),
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(d.device(device), &ci, nil, &layout); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(layout), native.Success
}

func (d *Driver) DestroyDescriptorSetLayout(device, layout native.Handle) {
	vk.DestroyDescriptorSetLayout(d.device(device), take[vk.DescriptorSetLayout](&d.objects, layout), nil)
}

func (d *Driver) CreateDescriptorPool(device native.Handle, info *native.DescriptorPoolCreateInfo) (native.Handle, native.Result) {
	sizes := make([]vk.DescriptorPoolSize, len(info.PoolSizes))
	for i, s := range info.PoolSizes {
		sizes[i] = vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.DescriptorCount,
		}
	}
	ci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(info.Flags),
		MaxSets:       info.MaxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(d.device(device), &ci, nil, &pool); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(&descriptorPool{pool: pool}), native.Success
}

// descriptorPool remembers its sets so that destroying the pool also
// forgets them.
type descriptorPool struct {
	pool vk.DescriptorPool
	sets []native.Handle
}

func (d *Driver) DestroyDescriptorPool(device, pool native.Handle) {
	p := take[*descriptorPool](&d.objects, pool)
	if p == nil {
		return
	}
	vk.DestroyDescriptorPool(d.device(device), p.pool, nil)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range p.sets {
		d.objects.drop(s)
	}
}

func (d *Driver) AllocateDescriptorSets(device, pool native.Handle, layouts []native.Handle) ([]native.Handle, native.Result) {
	p := lookup[*descriptorPool](&d.objects, pool)
	if p == nil || len(layouts) == 0 {
		return nil, native.ErrorInitializationFailed
	}
	ai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        lookupAll[vk.DescriptorSetLayout](&d.objects, layouts),
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	if res := vk.AllocateDescriptorSets(d.device(device), &ai, &sets[0]); res != vk.Success {
		return nil, result(res)
	}
	hs := make([]native.Handle, len(sets))
	for i, s := range sets {
		hs[i] = d.objects.put(s)
	}
	d.mu.Lock()
	p.sets = append(p.sets, hs...)
	d.mu.Unlock()
	return hs, native.Success
}

func (d *Driver) FreeDescriptorSets(device, pool native.Handle, sets []native.Handle) native.Result {
	p := lookup[*descriptorPool](&d.objects, pool)
	if p == nil || len(sets) == 0 {
		return native.Success
	}
	vs := lookupAll[vk.DescriptorSet](&d.objects, sets)
	res := vk.FreeDescriptorSets(d.device(device), p.pool, uint32(len(vs)), &vs[0])

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range sets {
		d.objects.drop(s)
		for i, h := range p.sets {
			if h == s {
				p.sets = append(p.sets[:i], p.sets[i+1:]...)
				break
			}
		}
	}
	return result(res)
}
